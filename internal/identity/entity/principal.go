package entity

import "time"

// Principal is an authenticated party, either a user or a distributor.
// PayoutHandle and IsActive are only meaningful for distributors.
type Principal struct {
	ID           int64
	Kind         Kind
	Phone        string
	DisplayName  string
	AvatarURL    string
	PayoutHandle string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type NewPrincipal struct {
	ID          int64
	Kind        Kind
	Phone       string
	DisplayName string
}

// PrincipalPatch carries the fields a profile update touches. Nil means
// unchanged; an empty PayoutHandle clears it.
type PrincipalPatch struct {
	DisplayName  *string
	PayoutHandle *string
	IsActive     *bool
}

func (p PrincipalPatch) IsEmpty() bool {
	return p.DisplayName == nil && p.PayoutHandle == nil && p.IsActive == nil
}

// DistributorPayout is the public view used to pay a distributor.
type DistributorPayout struct {
	DistributorID int64
	Name          string
	PayoutHandle  string
}

type DistributorListFilter struct {
	Page int32
	Size int32
}

func (f DistributorListFilter) Offset() int32 {
	return (f.Page - 1) * f.Size
}
