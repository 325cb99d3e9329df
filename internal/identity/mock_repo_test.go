package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	principals map[uuid.UUID]*Principal
	records    map[uuid.UUID]*ClinicalRecord
	failWith   error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		principals: make(map[uuid.UUID]*Principal),
		records:    make(map[uuid.UUID]*ClinicalRecord),
	}
}

func (m *mockRepo) addPrincipal(role Role, identifier string, link *uuid.UUID) *Principal {
	p := &Principal{
		ID:               uuid.New(),
		Role:             role,
		Name:             "Test " + string(role),
		Email:            identifier + "@clinic.test",
		Identifier:       identifier,
		ClinicalRecordID: link,
	}
	m.principals[p.ID] = p
	return p
}

func (m *mockRepo) addRecord(identifier string) *ClinicalRecord {
	r := &ClinicalRecord{
		ID:         uuid.New(),
		Name:       "Record " + identifier,
		Identifier: identifier,
		Phone:      "555-0100",
		Address:    "1 Main St",
	}
	m.records[r.ID] = r
	return r
}

func (m *mockRepo) GetPrincipalByID(_ context.Context, id uuid.UUID) (*Principal, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	p, ok := m.principals[id]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return p, nil
}

func (m *mockRepo) GetPrincipalByEmail(_ context.Context, email string) (*Principal, error) {
	for _, p := range m.principals {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, ErrPrincipalNotFound
}

func (m *mockRepo) CreatePrincipal(_ context.Context, p *Principal, placeholder *ClinicalRecord) (*Principal, error) {
	for _, existing := range m.principals {
		if existing.Email == p.Email {
			return nil, ErrEmailTaken
		}
		if existing.Identifier == p.Identifier {
			return nil, ErrIdentifierTaken
		}
	}
	if placeholder != nil {
		var linked *ClinicalRecord
		for _, r := range m.records {
			if r.Identifier == placeholder.Identifier {
				linked = r
			}
		}
		if linked == nil {
			cp := *placeholder
			m.records[cp.ID] = &cp
			linked = &cp
		}
		id := linked.ID
		p.ClinicalRecordID = &id
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.principals[p.ID] = p
	return p, nil
}

func (m *mockRepo) GetClinicalRecordByID(_ context.Context, id uuid.UUID) (*ClinicalRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, ErrClinicalRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) GetClinicalRecordByIdentifier(_ context.Context, identifier string) (*ClinicalRecord, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for _, r := range m.records {
		if r.Identifier == identifier {
			cp := *r
			return &cp, nil
		}
	}
	return nil, ErrClinicalRecordNotFound
}

func (m *mockRepo) ListClinicalRecords(_ context.Context) ([]ClinicalRecord, error) {
	out := []ClinicalRecord{}
	for _, r := range m.records {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRepo) CreateClinicalRecord(_ context.Context, rec *ClinicalRecord) (*ClinicalRecord, error) {
	for _, r := range m.records {
		if r.Identifier == rec.Identifier {
			return nil, ErrIdentifierTaken
		}
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *mockRepo) UpdateClinicalRecord(_ context.Context, rec *ClinicalRecord) (*ClinicalRecord, error) {
	if _, ok := m.records[rec.ID]; !ok {
		return nil, ErrClinicalRecordNotFound
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *mockRepo) DeleteClinicalRecord(_ context.Context, id uuid.UUID) error {
	if _, ok := m.records[id]; !ok {
		return ErrClinicalRecordNotFound
	}
	delete(m.records, id)
	return nil
}

var errConnRefused = errors.New("connection refused")
