package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKVEq(t *testing.T) {
	in := "# comment\nUSB=1111-AAAA\n\nKEY = secret.txt\nnoequals\n=novalue\nX=a=b\nUSB=2222-BBBB\n"

	m := ParseKVEq(in)

	assert.Equal(t, "2222-BBBB", m["USB"], "later key overwrites earlier one")
	assert.Equal(t, "secret.txt", m["KEY"])
	assert.Equal(t, "a=b", m["X"])
	assert.NotContains(t, m, "noequals")
	assert.NotContains(t, m, "")
	assert.Len(t, m, 3)
}

func TestParseKVEq_BlkidExport(t *testing.T) {
	out := "DEVNAME=/dev/sdb1\nUUID=1111-AAAA\nBLOCK_SIZE=4096\nTYPE=ext4\n"

	m := ParseKVEq(out)

	assert.Equal(t, "/dev/sdb1", m["DEVNAME"])
	assert.Equal(t, "1111-AAAA", m["UUID"])
	assert.Equal(t, "ext4", m["TYPE"])
}

func TestSubtleConstTimeEq(t *testing.T) {
	assert.True(t, SubtleConstTimeEq("1111-AAAA", "1111-AAAA"))
	assert.True(t, SubtleConstTimeEq("", ""))
	assert.False(t, SubtleConstTimeEq("1111-AAAA", "1111-aaaa"))
	assert.False(t, SubtleConstTimeEq("1111-AAAA", "1111-AAA"))
}
