// Package domain contains the core entities of the study backend:
// card progress records, study sessions and users, together with their
// validation rules. Entities are plain structs with constructor functions
// that enforce invariants at the boundary; all mutation flows through the
// service layer.
package domain
