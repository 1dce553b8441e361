package pack

import "testing"

func TestPackUnpackRoundtripIntegers(t *testing.T) {
	data, err := Pack(">i4i2", []any{int64(305419896), int64(-2)})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if len(data) != 6 {
		t.Fatalf("unexpected length %d", len(data))
	}
	vals, pos, err := Unpack(">i4i2", data, 0)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if pos != 6 {
		t.Fatalf("pos = %d", pos)
	}
	if vals[0] != int64(305419896) || vals[1] != int64(-2) {
		t.Fatalf("got %v", vals)
	}
}

func TestPackUnpackFloat(t *testing.T) {
	data, err := Pack("<d", []any{float64(3.25)})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	vals, _, err := Unpack("<d", data, 0)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if vals[0] != float64(3.25) {
		t.Fatalf("got %v", vals)
	}
}

func TestPackFixedAndZeroString(t *testing.T) {
	data, err := Pack("c5z", []any{"hi", "tail"})
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	vals, pos, err := Unpack("c5z", data, 0)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if vals[0] != "hi\x00\x00\x00" {
		t.Fatalf("got %q", vals[0])
	}
	if vals[1] != "tail" {
		t.Fatalf("got %q", vals[1])
	}
	if pos != len(data) {
		t.Fatalf("pos %d != %d", pos, len(data))
	}
}

func TestSizeRejectsVariableSize(t *testing.T) {
	if _, err := Size("s4"); err == nil {
		t.Fatalf("expected error for variable-size format")
	}
	n, err := Size("i4i8")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if n != 12 {
		t.Fatalf("got %d", n)
	}
}
