package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishaan812/farmer/internal/git"
)

func openTestStore(t *testing.T) *SummaryStore {
	t.Helper()
	st, err := OpenSummaryStore(filepath.Join(t.TempDir(), "farmer.db"))
	require.NoError(t, err)
	return st
}

func TestSignatureIgnoresOrder(t *testing.T) {
	a := []git.Commit{{Hash: "1"}, {Hash: "2"}}
	b := []git.Commit{{Hash: "2"}, {Hash: "1"}}
	c := []git.Commit{{Hash: "1"}, {Hash: "3"}}

	assert.Equal(t, Signature(a), Signature(b))
	assert.NotEqual(t, Signature(a), Signature(c))
	assert.Len(t, Signature(a), 16)
}

func TestSummaryStore(t *testing.T) {
	st := openTestStore(t)
	day := git.NewWorkDay("2024-01-10", []git.Commit{{Hash: "a1", Timestamp: time.Now()}})

	got, err := st.ForDay(day)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.Save(&Summary{
		Date:         day.Date,
		Signature:    Signature(day.Commits),
		ProviderID:   "ollama",
		ProviderName: "Ollama",
		Verbosity:    "normal",
		CommitCount:  1,
		Summary:      "I fixed login.",
	}))
	require.NoError(t, st.Save(&Summary{
		Date:      day.Date,
		Signature: Signature(day.Commits),
		Summary:   "I fixed the login flow.",
	}))

	got, err = st.ForDay(day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "I fixed the login flow.", got.Summary)

	changed := git.NewWorkDay("2024-01-10", []git.Commit{{Hash: "a1"}, {Hash: "a2"}})
	got, err = st.ForDay(changed)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, st.Save(&Summary{Date: "2024-01-12", Signature: "x", Summary: "later"}))
	list, err := st.List("2024-01-09", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-01-12", list[0].Date)

	m, err := st.ForDays([]git.WorkDay{day, changed})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"2024-01-10": "I fixed the login flow."}, m)

	n, err := st.Delete("2024-01-10")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
