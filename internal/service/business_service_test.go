package service

import (
	"errors"
	"testing"

	"github.com/ledgerline/ledgerline-backend/internal/domain"
	"github.com/ledgerline/ledgerline-backend/internal/testutil"
)

func TestBusinessLifecycle(t *testing.T) {
	repo := testutil.NewMockBusinessRepository()
	svc := NewBusinessService(repo)

	if _, err := svc.CreateBusiness("   "); !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}

	business, err := svc.CreateBusiness("  Alpha LLC  ")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if business.Name != "Alpha LLC" || !business.IsActive {
		t.Errorf("unexpected business: %+v", business)
	}

	renamed, err := svc.UpdateBusiness(business.ID, "Alpha Holdings")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if renamed.Name != "Alpha Holdings" {
		t.Errorf("expected renamed business, got %q", renamed.Name)
	}

	if err := svc.DeactivateBusiness(business.ID); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	active, _ := svc.GetBusinesses(false)
	if len(active) != 0 {
		t.Errorf("expected no active businesses, got %d", len(active))
	}
	all, _ := svc.GetBusinesses(true)
	if len(all) != 1 {
		t.Errorf("expected deactivated business still listed, got %d", len(all))
	}

	// Deactivated ledgers stay readable
	if _, err := svc.GetBusiness(business.ID); err != nil {
		t.Errorf("expected deactivated business readable, got %v", err)
	}

	if _, err := svc.GetBusiness(99); !errors.Is(err, domain.ErrBusinessNotFound) {
		t.Errorf("expected ErrBusinessNotFound, got %v", err)
	}
}
