package model

// Package model defines domain data structures used across the app: grid
// layouts, cell state, the board snapshot, export tasks and status enums.
// Board updates are value-returning so every consumer works on a snapshot.
