package history

import (
	"fmt"
	"sync"
	"testing"

	"lenabot/internal/model"

	"github.com/stretchr/testify/assert"
)

func turn(role model.Role, content string) model.Turn {
	return model.Turn{Role: role, Content: content}
}

func TestStore_AppendTruncatesToLastTen(t *testing.T) {
	s := New()

	for i := 0; i < 8; i++ {
		s.Append(1, 2,
			turn(model.RoleUser, fmt.Sprintf("u%d", i)),
			turn(model.RoleAssistant, fmt.Sprintf("a%d", i)))
	}

	h := s.Get(1, 2)
	assert.Len(t, h, MaxTurns)
	// Retained suffix equals the last ten turns in arrival order.
	assert.Equal(t, "u3", h[0].Content)
	assert.Equal(t, "a7", h[len(h)-1].Content)
}

func TestStore_NoCrossChatLeakage(t *testing.T) {
	s := New()
	s.Append(1, 2, turn(model.RoleUser, "in chat one"))
	s.Append(9, 2, turn(model.RoleUser, "in chat nine"))

	assert.Len(t, s.Get(1, 2), 1)
	assert.Len(t, s.Get(9, 2), 1)
	assert.Equal(t, "in chat one", s.Get(1, 2)[0].Content)
	assert.Equal(t, "in chat nine", s.Get(9, 2)[0].Content)

	s.Clear(1, 2)
	assert.Nil(t, s.Get(1, 2))
	assert.Len(t, s.Get(9, 2), 1)
}

func TestStore_Clear(t *testing.T) {
	s := New()
	assert.False(t, s.Clear(1, 2))

	s.Append(1, 2, turn(model.RoleUser, "hi"))
	assert.True(t, s.Clear(1, 2))
	assert.False(t, s.Clear(1, 2))
}

func TestStore_HasUser(t *testing.T) {
	s := New()
	assert.False(t, s.HasUser(2))

	s.Append(1, 2, turn(model.RoleUser, "hi"))
	assert.True(t, s.HasUser(2))
	assert.False(t, s.HasUser(3))
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New()
	s.Append(1, 2, turn(model.RoleUser, "original"))

	h := s.Get(1, 2)
	h[0].Content = "mutated"

	assert.Equal(t, "original", s.Get(1, 2)[0].Content)
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(1, int64(i%5), turn(model.RoleUser, "x"))
		}(i)
	}
	wg.Wait()

	for i := int64(0); i < 5; i++ {
		assert.LessOrEqual(t, len(s.Get(1, i)), MaxTurns)
	}
}
