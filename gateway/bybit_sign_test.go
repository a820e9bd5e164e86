package gateway

import "testing"

func TestSignWS(t *testing.T) {
	sig := SignWS("secret", 1700000000000)
	if len(sig) != 64 {
		t.Fatalf("hex sha256 should be 64 chars, got %d", len(sig))
	}
	// 同一输入签名稳定
	if sig != SignWS("secret", 1700000000000) {
		t.Fatalf("signature not deterministic")
	}
	// expires 或密钥变了签名必须变
	if sig == SignWS("secret", 1700000000001) {
		t.Fatalf("expires not bound by signature")
	}
	if sig == SignWS("other", 1700000000000) {
		t.Fatalf("secret not bound by signature")
	}
}

func TestSignREST(t *testing.T) {
	sig := SignREST("secret", "key", 1700000000000, 5000, "category=linear")
	if len(sig) != 64 {
		t.Fatalf("hex sha256 should be 64 chars, got %d", len(sig))
	}
	if sig != SignREST("secret", "key", 1700000000000, 5000, "category=linear") {
		t.Fatalf("signature not deterministic")
	}
	if sig == SignREST("secret", "key", 1700000000000, 5000, "category=spot") {
		t.Fatalf("query not bound by signature")
	}
}
