package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name    string
		event   string
		actorID uint
		ownerID uint
		want    bool
	}{
		{"like on someone else's thread", EventLike, 2, 1, true},
		{"comment on someone else's thread", EventComment, 2, 1, true},
		{"self action suppressed", EventLike, 1, 1, false},
		{"unknown owner suppressed", EventComment, 2, 0, false},
		{"unknown event suppressed", "follow", 2, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Build(tt.event, tt.actorID, "bob", tt.ownerID, 7, "Repotting tips")
			if !tt.want {
				assert.Nil(t, n)
				return
			}
			require.NotNil(t, n)
			assert.Equal(t, tt.event, n.Type)
			assert.Equal(t, "bob", n.ActorName)
			assert.Equal(t, uint(7), n.ThreadID)
			assert.Contains(t, n.Message, `"Repotting tips"`)
		})
	}
}

func TestBuildMessages(t *testing.T) {
	like := Build(EventLike, 2, "bob", 1, 7, "Repotting tips")
	require.NotNil(t, like)
	assert.Equal(t, `liked your thread "Repotting tips"`, like.Message)

	comment := Build(EventComment, 2, "bob", 1, 7, "Repotting tips")
	require.NotNil(t, comment)
	assert.Equal(t, `commented on your thread "Repotting tips"`, comment.Message)
}
