package models_test

import (
	"errors"
	"testing"

	"bitbucket.org/pleinsud/facade_backend/models"
	"bitbucket.org/pleinsud/facade_backend/utils"
)

func TestCheckCompanyAccess(t *testing.T) {
	if err := models.CheckCompanyAccess("company-a", "company-a"); err != nil {
		t.Fatalf("same company expected nil, got %v", err)
	}

	cases := []struct {
		name     string
		resource string
		caller   string
	}{
		{"different companies", "company-a", "company-b"},
		{"empty caller", "company-a", ""},
		{"empty resource", "", "company-b"},
		{"case sensitive", "Company-A", "company-a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := models.CheckCompanyAccess(tc.resource, tc.caller)
			if !errors.Is(err, utils.ErrorForbidden) {
				t.Fatalf("expected ErrorForbidden, got %v", err)
			}
		})
	}
}

func TestIsOwner(t *testing.T) {
	if !models.IsOwner(models.RoleOwner) {
		t.Fatalf("OWNER expected true")
	}
	if models.IsOwner(models.RoleUser) {
		t.Fatalf("USER expected false")
	}
	if models.IsOwner("") {
		t.Fatalf("empty role expected false")
	}
	if models.IsOwner("owner") {
		t.Fatalf("lowercase role expected false")
	}
}
