package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAuctionJSONShape(t *testing.T) {
	a := &Auction{
		ID:           1,
		Code:         "K4YQ2A",
		Private:      true,
		InvitedIDs:   []int64{2, 3},
		CurrentPrice: 120000,
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	body := string(data)

	if strings.Contains(body, "invited") || strings.Contains(body, "InvitedIDs") {
		t.Errorf("auction JSON exposes the invite list: %s", body)
	}
	for _, key := range []string{`"current_price"`, `"seller_id"`, `"bid_count"`} {
		if !strings.Contains(body, key) {
			t.Errorf("auction JSON missing %s: %s", key, body)
		}
	}
}

func TestUserJSONShape(t *testing.T) {
	u := &User{
		ID:           1,
		Email:        "anna@example.com",
		Username:     "anna",
		PasswordHash: "$2a$10$secret",
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	body := string(data)

	if strings.Contains(body, "secret") || strings.Contains(body, "password") {
		t.Errorf("user JSON exposes the password hash: %s", body)
	}
	if !strings.Contains(body, `"username":"anna"`) {
		t.Errorf("user JSON missing snake_case username: %s", body)
	}
}

func TestDocumentJSONShape(t *testing.T) {
	d := &Document{
		ID:        4,
		OwnerID:   1,
		Kind:      "deed",
		ObjectKey: "documents/1/deed.pdf",
		FileName:  "deed.pdf",
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	body := string(data)

	if strings.Contains(body, "documents/1/deed.pdf") {
		t.Errorf("document JSON exposes the storage key: %s", body)
	}
	if !strings.Contains(body, `"file_name":"deed.pdf"`) {
		t.Errorf("document JSON missing snake_case file name: %s", body)
	}
}
