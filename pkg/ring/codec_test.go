package ring

import "testing"

// Scenario 6: codec round-trip on a representative ElectionStart message.
func TestCodec_RoundTrip(t *testing.T) {
	m := Message{Source: 5584, Type: ElectionStart, Value: "iorjjkgfd"}
	decoded, err := DecodeMessage(EncodeMessage(m))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != m {
		t.Fatalf("round trip mismatch: got %#v, want %#v", decoded, m)
	}
}

func TestCodec_RoundTrip_EmptyValue(t *testing.T) {
	m := Message{Source: 1, Type: Greetings, Value: ""}
	decoded, err := DecodeMessage(EncodeMessage(m))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded != m {
		t.Fatalf("round trip mismatch: got %#v, want %#v", decoded, m)
	}
}

func TestCodec_Decode_Malformed(t *testing.T) {
	cases := []string{
		"",
		"{\n\t\"source\": 1,\n\t\"type\": 0,\n\t\"value\": \"x\"\n", // missing closing brace
		"{\n\t\"source\": nope,\n\t\"type\": 0,\n\t\"value\": \"x\"\n}",
		"{\n\t\"source\": 1,\n\t\"type\": 9,\n\t\"value\": \"x\"\n}", // out of range kind
		"not a message at all",
	}
	for _, c := range cases {
		if _, err := DecodeMessage(c); err == nil {
			t.Fatalf("expected decode error for payload %q", c)
		}
	}
}

func TestCodec_Encode_ExactShape(t *testing.T) {
	got := EncodeMessage(Message{Source: 42, Type: ElectedLeader, Value: "hi"})
	want := "{\n\t\"source\": 42,\n\t\"type\": 2,\n\t\"value\": hi\n}"
	if got != want {
		t.Fatalf("encode mismatch:\ngot:  %q\nwant: %q", got, want)
	}
}
