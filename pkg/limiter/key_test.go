package limiter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyname_ContainsNameAndSeconds(t *testing.T) {
	key := Keyname("mykey", 12345)
	assert.Contains(t, key, "mykey")
	assert.Contains(t, key, "12345")
	assert.True(t, strings.HasPrefix(key, DefaultPrefix))
}

func TestKeyname_Deterministic(t *testing.T) {
	assert.Equal(t, Keyname("example", 568291), Keyname("example", 568291))
}

func TestKeyname_Distinct(t *testing.T) {
	pairs := []struct {
		name    string
		seconds int
	}{
		{"a", 1},
		{"b", 1},
		{"a", 10},
		{"a:1", 0},
		{"a", 10},
		{"a:", 10},
		{"a}:1", 0},
		{"", 1},
	}

	seen := make(map[string]int)
	for i, p := range pairs {
		key := Keyname(p.name, p.seconds)
		if j, ok := seen[key]; ok {
			assert.Equal(t, pairs[j], p, "%q collides with pair %d", key, j)
			continue
		}
		seen[key] = i
	}
	assert.NotEqual(t, Keyname("a", 1), Keyname("b", 1))
}

func TestKeyname_SharesClusterSlotPerName(t *testing.T) {
	// Redis Cluster hashes only the substring inside the first {...}.
	tag := func(key string) string {
		start := strings.IndexByte(key, '{')
		end := strings.IndexByte(key[start+1:], '}')
		return key[start+1 : start+1+end]
	}
	assert.Equal(t, "n:user_1", tag(Keyname("user_1", 10)))
	assert.Equal(t, tag(Keyname("user_1", 10)), tag(Keyname("user_1", 3600)))

	for _, name := range []string{"", "}", "a}:1", "{x}"} {
		first := tag(Keyname(name, 10))
		assert.NotEmpty(t, first, "name %q", name)
		assert.Equal(t, first, tag(Keyname(name, 3600)), "name %q", name)
	}
}

func TestLimiterKeyname_UsesPrefix(t *testing.T) {
	l := NewMemoryLimiter(WithPrefix("myapp:rate:"))
	assert.Equal(t, "myapp:rate:{n:user_1}:60", l.Keyname("user_1", 60))
	assert.Equal(t, "limiter:{n:user_1}:60", Keyname("user_1", 60))
}
