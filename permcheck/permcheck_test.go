package permcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootAlwaysAllowed(t *testing.T) {
	assert.True(t, Check(Caller{UID: 0}, Stat{UID: 500, Mode: 0}, Read|Write|Execute))
}

func TestOwnerModeGovernsOwner(t *testing.T) {
	stat := Stat{UID: 500, GID: 500, Mode: 0640}
	assert.True(t, Check(Caller{UID: 500, GID: 500}, stat, Read))
	assert.True(t, Check(Caller{UID: 500, GID: 500}, stat, Read|Write))
	assert.False(t, Check(Caller{UID: 500, GID: 500}, stat, Execute))
}

func TestGroupModeGovernsGroup(t *testing.T) {
	stat := Stat{UID: 500, GID: 200, Mode: 0640}
	assert.True(t, Check(Caller{UID: 600, GID: 200}, stat, Read))
	assert.False(t, Check(Caller{UID: 600, GID: 200}, stat, Write))
}

func TestOtherModeGovernsEveryoneElse(t *testing.T) {
	stat := Stat{UID: 500, GID: 200, Mode: 0644}
	assert.True(t, Check(Caller{UID: 700, GID: 700}, stat, Read))
	assert.False(t, Check(Caller{UID: 700, GID: 700}, stat, Write))
}

func TestZeroModeDeniesNonRoot(t *testing.T) {
	stat := Stat{UID: 500, GID: 500, Mode: 0}
	assert.False(t, Check(Caller{UID: 500, GID: 500}, stat, Read))
}
