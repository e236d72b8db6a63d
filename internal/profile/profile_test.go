package profile

import (
	"testing"

	"yt-extract-api/pkg/models"
)

func TestOrderIsFixed(t *testing.T) {
	s := NewSelector()

	expected := []models.ClientName{
		models.ClientAndroid,
		models.ClientIOS,
		models.ClientWeb,
		models.ClientMobileWeb,
	}

	order := s.Order()
	if len(order) != len(expected) {
		t.Fatalf("Expected %d profiles, got %d", len(expected), len(order))
	}
	for i, name := range expected {
		if order[i] != name {
			t.Errorf("Expected %s at position %d, got %s", name, i, order[i])
		}
	}
}

func TestForAttemptWrapsAround(t *testing.T) {
	s := NewSelector()

	tests := []struct {
		attempt  int
		expected models.ClientName
	}{
		{0, models.ClientAndroid},
		{1, models.ClientIOS},
		{2, models.ClientWeb},
		{3, models.ClientMobileWeb},
		{4, models.ClientAndroid},
		{7, models.ClientMobileWeb},
	}

	for _, test := range tests {
		p := s.ForAttempt(test.attempt)
		if p.Name != test.expected {
			t.Errorf("ForAttempt(%d): expected %s, got %s", test.attempt, test.expected, p.Name)
		}
	}
}

func TestPinned(t *testing.T) {
	s := NewSelector()

	p, ok := s.Pinned(models.ClientIOS)
	if !ok {
		t.Fatal("Expected ios profile to exist")
	}
	if p.PlayerClient != "ios" {
		t.Errorf("Expected player client ios, got %s", p.PlayerClient)
	}
	if p.UserAgent == "" {
		t.Error("Expected a mobile user agent on the ios profile")
	}

	if _, ok := s.Pinned(models.ClientName("tv")); ok {
		t.Error("Expected unknown profile name to report not found")
	}
}

func TestProfilesCarryPlayerClient(t *testing.T) {
	s := NewSelector()
	for _, name := range s.Order() {
		p, ok := s.Pinned(name)
		if !ok {
			t.Fatalf("Profile %s missing", name)
		}
		if p.PlayerClient == "" {
			t.Errorf("Profile %s has no player client", name)
		}
		if p.UserAgent == "" {
			t.Errorf("Profile %s has no user agent", name)
		}
	}
}
