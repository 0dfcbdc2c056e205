package types

import (
	"svelab/internal/numeric"
)

// EnumMember is one enumerand with its resolved value.
type EnumMember struct {
	Name  string
	Value numeric.SVInt
}

// EnumType is an enumeration over an integral base type. The enum is itself
// integral with the base's width and flags.
type EnumType struct {
	Name    string // typedef name when declared through one, else ""
	Base    Type
	Members []EnumMember
}

func (t *EnumType) TypeKind() Kind    { return KindEnum }
func (t *EnumType) BitWidth() uint32  { return t.Base.BitWidth() }
func (t *EnumType) IsSigned() bool    { return t.Base.IsSigned() }
func (t *EnumType) IsFourState() bool { return t.Base.IsFourState() }
func (t *EnumType) Canonical() Type   { return t }

func (t *EnumType) String() string {
	if t.Name != "" {
		return t.Name
	}
	return "enum " + t.Base.String()
}

// MemberByName finds an enumerand.
func (t *EnumType) MemberByName(name string) (EnumMember, bool) {
	for _, m := range t.Members {
		if m.Name == name {
			return m, true
		}
	}
	return EnumMember{}, false
}
