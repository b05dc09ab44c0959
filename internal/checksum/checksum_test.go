package checksum

import (
	"strings"
	"testing"
)

func TestSum(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sum(nil); got != want {
		t.Errorf("Sum(nil) = %s", got)
	}
}

func TestKey(t *testing.T) {
	if Key("a", "b") != Sum([]byte("a:b")) {
		t.Error("Key should hash the joined parts")
	}
	if Key("a", "b") == Key("ab") {
		t.Error("Key should keep part boundaries")
	}
}

func TestSumReader(t *testing.T) {
	sum, n, err := SumReader(strings.NewReader("0 HEAD\n"))
	if err != nil {
		t.Fatal(err)
	}
	if sum != Sum([]byte("0 HEAD\n")) || n != 7 {
		t.Errorf("SumReader = %s, %d", sum, n)
	}
}
