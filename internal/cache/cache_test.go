package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyBuilders(t *testing.T) {
	require.Equal(t, "chats:f-1:u-1", ChatsKey("f-1", "u-1"))
	require.Equal(t, "folders:u-1", FoldersKey("u-1"))
	require.Equal(t, "search_history:u-1", searchHistoryKey("u-1"))
}
