package snipeit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestServer(t *testing.T, routes map[string]string) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "test-token")
}

func TestUsers(t *testing.T) {
	_, c := newTestServer(t, map[string]string{
		"GET /users/": `{"total": 2, "rows": [
			{"id": 7, "name": "Jane&#39;s Doe", "email": ""},
			{"id": 8, "name": "Sam Roe", "email": "sam@example.org"}
		]}`,
	})

	users, err := c.Users(context.Background())
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	want := []User{
		{ID: 7, Name: "Jane&#39;s Doe", Email: ""},
		{ID: 8, Name: "Sam Roe", Email: "sam@example.org"},
	}
	if diff := cmp.Diff(want, users); diff != "" {
		t.Errorf("Users mismatch (-want +got):\n%s", diff)
	}
}

func TestUserAssets(t *testing.T) {
	_, c := newTestServer(t, map[string]string{
		"GET /users/7/assets": `{"rows": [
			{"asset_tag": "A1", "name": "Laptop", "model": {"name": "X1"}, "serial": "S1"}
		]}`,
	})

	assets, err := c.UserAssets(context.Background(), 7)
	if err != nil {
		t.Fatalf("UserAssets: %v", err)
	}
	want := []HardwareAsset{{AssetTag: "A1", Name: "Laptop", Model: Model{Name: "X1"}, Serial: "S1"}}
	if diff := cmp.Diff(want, assets); diff != "" {
		t.Errorf("UserAssets mismatch (-want +got):\n%s", diff)
	}
}

func TestMissingRowsKey(t *testing.T) {
	_, c := newTestServer(t, map[string]string{
		"GET /users/7/assets": `{"status": "error", "messages": "oops"}`,
	})

	_, err := c.UserAssets(context.Background(), 7)
	if !errors.Is(err, ErrMissingRows) {
		t.Fatalf("err = %v, want ErrMissingRows", err)
	}
}

func TestAccessoryCheckinCheckout(t *testing.T) {
	var checkoutBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /accessories/3/checkedout":
			w.Write([]byte(`{"rows": [{"id": 7, "assigned_pivot_id": 99}]}`))
		case "POST /accessories/99/checkin":
			w.Write([]byte(`{"status": "success"}`))
		case "POST /accessories/3/checkout":
			body := make([]byte, r.ContentLength)
			r.Body.Read(body)
			checkoutBody = string(body)
			w.Write([]byte(`{"status": "success"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "test-token")
	ctx := context.Background()

	holders, err := c.AccessoryCheckedOut(ctx, 3)
	if err != nil {
		t.Fatalf("AccessoryCheckedOut: %v", err)
	}
	if len(holders) != 1 || holders[0].AssignedPivotID != 99 {
		t.Fatalf("holders = %+v", holders)
	}
	if err := c.CheckinAccessory(ctx, 99); err != nil {
		t.Fatalf("CheckinAccessory: %v", err)
	}
	if err := c.CheckoutAccessory(ctx, 3, 8); err != nil {
		t.Fatalf("CheckoutAccessory: %v", err)
	}
	if checkoutBody != `{"assigned_to":8}` {
		t.Errorf("checkout payload = %q", checkoutBody)
	}
}

func TestUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()
	c := NewClient(srv.URL, "test-token")
	if _, err := c.Users(context.Background()); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestMatchUsers(t *testing.T) {
	users := []User{
		{ID: 7, Name: "Jane Doe", Email: "jane@example.org"},
		{ID: 8, Name: "Sam Roe", Email: "sam@example.org"},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"7", 1},
		{"Jane Doe", 1},
		{"sam@example.org", 1},
		{"nobody", 0},
	}
	for _, tc := range tests {
		if got := len(MatchUsers(users, tc.query)); got != tc.want {
			t.Errorf("MatchUsers(%q) returned %d users, want %d", tc.query, got, tc.want)
		}
	}

	if _, err := FindUser(users, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("FindUser err = %v, want ErrUserNotFound", err)
	}
	u, err := FindUser(users, "8")
	if err != nil || u.Name != "Sam Roe" {
		t.Errorf("FindUser(8) = %+v, %v", u, err)
	}
}
