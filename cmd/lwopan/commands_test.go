package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/lwopan/internal/domain/entities"
)

func writeTables(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	data := filepath.Join(dir, "happyread")
	require.NoError(t, os.Mkdir(data, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "book_all.csv"), []byte(
		"id,question,a,b,c,d,answer\n"+
			"1,Who is the hero?,,,,,The fox\n"+
			"2,Where does the hero live?,,,,,\n",
	), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(data, "Book_9.csv"), []byte("number\n2\n1\n"), 0o644))
}

func runQuery(t *testing.T, args ...string) []entities.ResultEntry {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"query"}, args...))
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var results []entities.ResultEntry
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	return results
}

func TestQueryCommand(t *testing.T) {
	writeTables(t)

	assert.Equal(t,
		[]entities.ResultEntry{{Question: "Who is the hero?", Answer: "The fox"}},
		runQuery(t, "hero"),
	)
	assert.Equal(t,
		[]entities.ResultEntry{entities.NotFound("2")},
		runQuery(t, "2"),
	)
	assert.Equal(t,
		[]entities.ResultEntry{{Question: "Who is the hero?", Answer: "The fox"}},
		runQuery(t, "https://happyread.kh.edu.tw/book?id=9&x=1"),
	)
}

func TestQueryCommand_JoinsArguments(t *testing.T) {
	writeTables(t)

	assert.Equal(t,
		[]entities.ResultEntry{{Question: "Who is the hero?", Answer: "The fox"}},
		runQuery(t, "is", "the", "hero"),
	)
}

func TestQueryCommand_MissingData(t *testing.T) {
	t.Chdir(t.TempDir())

	assert.Equal(t, []entities.ResultEntry{entities.NotFound("hero")}, runQuery(t, "hero"))
}

func TestQueryCommand_RequiresArgument(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"query"})

	assert.Error(t, cmd.Execute())
}
