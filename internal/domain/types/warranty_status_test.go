package types_test

import (
	"reflect"
	"testing"

	"github.com/dropDatabas3/prepmood/internal/domain/types"
)

func TestWarrantyStatus_IsValid(t *testing.T) {
	valid := []types.WarrantyStatus{
		types.StatusIssued, types.StatusIssuedUnassigned,
		types.StatusActive, types.StatusSuspended, types.StatusRevoked,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []types.WarrantyStatus{"", "deleted", "ACTIVE", "pending"} {
		if s.IsValid() {
			t.Errorf("%q should be invalid", s)
		}
	}
}

func TestWarrantyStatus_Transitions(t *testing.T) {
	cases := []struct {
		status    types.WarrantyStatus
		activate  bool
		suspend   bool
		unsusp    bool
		refund    bool
		transfer  bool
		terminal  bool
	}{
		{types.StatusIssued, true, true, false, true, false, false},
		{types.StatusIssuedUnassigned, false, false, false, true, false, false},
		{types.StatusActive, false, true, false, false, true, false},
		{types.StatusSuspended, false, false, true, false, false, false},
		{types.StatusRevoked, false, false, false, false, false, true},
	}
	for _, c := range cases {
		t.Run(string(c.status), func(t *testing.T) {
			if got := c.status.CanActivate(); got != c.activate {
				t.Errorf("CanActivate = %v, want %v", got, c.activate)
			}
			if got := c.status.CanSuspend(); got != c.suspend {
				t.Errorf("CanSuspend = %v, want %v", got, c.suspend)
			}
			if got := c.status.CanUnsuspend(); got != c.unsusp {
				t.Errorf("CanUnsuspend = %v, want %v", got, c.unsusp)
			}
			if got := c.status.CanRefund(); got != c.refund {
				t.Errorf("CanRefund = %v, want %v", got, c.refund)
			}
			if got := c.status.CanTransfer(); got != c.transfer {
				t.Errorf("CanTransfer = %v, want %v", got, c.transfer)
			}
			if got := c.status.IsTerminal(); got != c.terminal {
				t.Errorf("IsTerminal = %v, want %v", got, c.terminal)
			}
		})
	}
}

func TestWarrantyStatus_AdminActions(t *testing.T) {
	cases := map[types.WarrantyStatus][]types.AdminAction{
		types.StatusIssued:           {types.ActionSuspend, types.ActionRefund},
		types.StatusIssuedUnassigned: {types.ActionRefund},
		types.StatusActive:           {types.ActionSuspend},
		types.StatusSuspended:        {types.ActionUnsuspend},
		types.StatusRevoked:          nil,
	}
	for status, want := range cases {
		if got := status.AdminActions(); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: AdminActions = %v, want %v", status, got, want)
		}
	}
}

func TestWarrantyStatus_AfterUnsuspend(t *testing.T) {
	// unsuspend siempre vuelve a issued, nunca al estado previo
	if got := types.StatusSuspended.AfterUnsuspend(); got != types.StatusIssued {
		t.Fatalf("AfterUnsuspend(suspended) = %s, want issued", got)
	}
	if got := types.StatusActive.AfterUnsuspend(); got != types.StatusActive {
		t.Fatalf("AfterUnsuspend(active) = %s, want active (no-op)", got)
	}
}

func TestValidReason(t *testing.T) {
	cases := []struct {
		reason string
		want   bool
	}{
		{"", false},
		{"short", false},
		{"123456789", false},              // 9 chars
		{"1234567890", true},              // exactly 10
		{"   padded but ok   ", true},     // trim antes de contar
		{"  123456789  ", false},          // 9 tras el trim
		{"áéíóúñçàèì", true},              // 10 runas multibyte
		{"customer requested refund", true},
	}
	for _, c := range cases {
		if got := types.ValidReason(c.reason); got != c.want {
			t.Errorf("ValidReason(%q) = %v, want %v", c.reason, got, c.want)
		}
	}
}
