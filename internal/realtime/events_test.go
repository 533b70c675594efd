package realtime

import "testing"

func TestDecodeEnvelope(t *testing.T) {
	body := []byte(`{"new":{"id":5,"status":"picked","owner_id":"o1","renter_id":"r1","current_lat":13.7,"current_lng":100.5},"old":{"id":5,"status":"pending"}}`)

	env, err := DecodeEnvelope[TaskRow](body)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if env.New.ID != 5 || env.New.Status != "picked" || env.Old.Status != "pending" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
	if env.New.CurrentLat == nil || *env.New.CurrentLat != 13.7 {
		t.Fatalf("coordinates not decoded: %+v", env.New)
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope[TaskRow]([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}
