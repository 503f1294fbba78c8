// Package models defines the core domain models for Teamtab.
//
// The models fall into two groups:
//
//   - Account and team records (User, Team, Member) owned by the team
//     store. The ledger engine only reads them.
//   - Ledger records (Expense, SettlementRequest). Expenses are immutable
//     once created except for deletion and the synthetic records a
//     settlement approval appends.
//
// All ids are UUID strings and all timestamps are Unix seconds.
// Relationships use id strings rather than pointers to avoid circular
// references between models.
package models
