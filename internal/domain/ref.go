package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RefKind tags how a related record was delivered by the backend.
type RefKind uint8

const (
	RefNone RefKind = iota
	RefID
	RefInline
)

// CompanyRef is either an inline company record or a bare company id.
type CompanyRef struct {
	Kind    RefKind
	ID      string
	Company *Company
}

// InlineCompany builds a resolved reference.
func InlineCompany(c Company) CompanyRef {
	return CompanyRef{Kind: RefInline, ID: c.ID, Company: &c}
}

// CompanyID builds an unresolved reference.
func CompanyID(id string) CompanyRef {
	if id == "" {
		return CompanyRef{}
	}
	return CompanyRef{Kind: RefID, ID: id}
}

// DisplayName returns the company name or UnknownCompanyName.
func (r CompanyRef) DisplayName() string {
	if r.Kind == RefInline && r.Company != nil && r.Company.Name != "" {
		return r.Company.Name
	}
	return UnknownCompanyName
}

// Resolve replaces an id reference with the matching inline record when known.
func (r CompanyRef) Resolve(known map[string]Company) CompanyRef {
	if r.Kind != RefID {
		return r
	}
	if c, ok := known[r.ID]; ok {
		return InlineCompany(c)
	}
	return r
}

func (r CompanyRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefInline:
		return json.Marshal(r.Company)
	case RefID:
		return json.Marshal(r.ID)
	default:
		return []byte("null"), nil
	}
}

func (r *CompanyRef) UnmarshalJSON(data []byte) error {
	kind, err := decodeRef(data, &r.ID, func(raw []byte) error {
		var c Company
		if err := json.Unmarshal(raw, &c); err != nil {
			return err
		}
		r.Company = &c
		r.ID = c.ID
		return nil
	})
	if err != nil {
		return fmt.Errorf("company reference: %w", err)
	}
	r.Kind = kind
	return nil
}

// UserRef is either an inline user record or a bare user id.
type UserRef struct {
	Kind RefKind
	ID   string
	User *User
}

// InlineUser builds a resolved reference.
func InlineUser(u User) UserRef {
	return UserRef{Kind: RefInline, ID: u.ID, User: &u}
}

// UserID builds an unresolved reference.
func UserID(id string) UserRef {
	if id == "" {
		return UserRef{}
	}
	return UserRef{Kind: RefID, ID: id}
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RefInline:
		return json.Marshal(r.User)
	case RefID:
		return json.Marshal(r.ID)
	default:
		return []byte("null"), nil
	}
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	kind, err := decodeRef(data, &r.ID, func(raw []byte) error {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			return err
		}
		r.User = &u
		r.ID = u.ID
		return nil
	})
	if err != nil {
		return fmt.Errorf("user reference: %w", err)
	}
	r.Kind = kind
	return nil
}

// UnmarshalJSON accepts an inline employee object or a bare employee id.
func (e *EmployeeSummary) UnmarshalJSON(data []byte) error {
	type plain EmployeeSummary
	var id string
	kind, err := decodeRef(data, &id, func(raw []byte) error {
		var p plain
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		*e = EmployeeSummary(p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("employee reference: %w", err)
	}
	if kind == RefID {
		*e = EmployeeSummary{ID: id}
	}
	return nil
}

func decodeRef(data []byte, id *string, inline func([]byte) error) (RefKind, error) {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return RefNone, nil
	case data[0] == '"':
		if err := json.Unmarshal(data, id); err != nil {
			return RefNone, err
		}
		if *id == "" {
			return RefNone, nil
		}
		return RefID, nil
	case data[0] == '{':
		if err := inline(data); err != nil {
			return RefNone, err
		}
		return RefInline, nil
	default:
		return RefNone, fmt.Errorf("unexpected JSON %q", string(data))
	}
}
