package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fkhayef/splitledger/internal/cli"
	"github.com/fkhayef/splitledger/internal/domain"
	"github.com/fkhayef/splitledger/pkg/middleware"
)

const dinner = `group: Dinner
members:
  - name: A
  - name: B
  - name: C
expenses:
  - description: Pizza
    amount: 90
    paid_by: A
    split_type: EQUAL
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSettle_JSON(t *testing.T) {
	path := writeFile(t, dinner)

	out, err := run(t, "", "settle", "-f", path, "-o", "json")
	require.NoError(t, err)

	var transfers []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &transfers))
	assert.Equal(t, []map[string]string{
		{"from": "B", "to": "A", "amount": "30.00"},
		{"from": "C", "to": "A", "amount": "30.00"},
	}, transfers)
}

func TestSettle_Table(t *testing.T) {
	out, err := run(t, dinner, "settle", "-f", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "FROM")
	assert.Equal(t, []string{"B", "A", "30.00"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"C", "A", "30.00"}, strings.Fields(lines[2]))
}

func TestSettle_AlreadySettled(t *testing.T) {
	out, err := run(t, "members:\n  - name: A\n  - name: B\n", "settle", "-f", "-")
	require.NoError(t, err)
	assert.Equal(t, "All settled up.\n", out)
}

func TestBalances_JSON(t *testing.T) {
	out, err := run(t, dinner, "balances", "-f", "-", "-o", "json")
	require.NoError(t, err)

	var got struct {
		Balances []struct {
			MemberID string `json:"member_id"`
			Paid     string `json:"paid"`
			Owed     string `json:"owed"`
			Net      string `json:"net"`
		} `json:"balances"`
		Summary struct {
			Total string `json:"total"`
			Count int    `json:"count"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	require.Len(t, got.Balances, 3)
	assert.Equal(t, "A", got.Balances[0].MemberID)
	assert.Equal(t, "90.00", got.Balances[0].Paid)
	assert.Equal(t, "30.00", got.Balances[0].Owed)
	assert.Equal(t, "60.00", got.Balances[0].Net)
	assert.Equal(t, "-30.00", got.Balances[1].Net)
	assert.Equal(t, "-30.00", got.Balances[2].Net)
	assert.Equal(t, "90.00", got.Summary.Total)
	assert.Equal(t, 1, got.Summary.Count)
}

func TestBalances_Table(t *testing.T) {
	out, err := run(t, dinner, "balances", "-f", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "MEMBER")
	assert.Contains(t, out, "60.00")
	assert.Contains(t, out, "1 expenses, total 90.00, average 90.00")
}

func TestSplit_Participants(t *testing.T) {
	file := dinner + `  - id: taxi
    description: Taxi
    amount: 10
    paid_by: B
    split_type: EQUAL
    participants: [B, C, A]
`
	out, err := run(t, file, "split", "-f", "-", "-o", "json")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 6)
	assert.Equal(t, "expense-1", rows[0]["expense_id"])

	// Participants keep group order and the first member absorbs the odd cent
	assert.Equal(t, map[string]string{"expense_id": "taxi", "member_id": "A", "amount": "3.34", "percentage": "33.40"}, rows[3])
	assert.Equal(t, "3.33", rows[4]["amount"])
	assert.Equal(t, "3.33", rows[5]["amount"])
}

func TestCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{
			name:    "missing file",
			args:    []string{"balances", "-f", filepath.Join(t.TempDir(), "nope.yaml")},
			wantErr: "failed to open ledger file",
		},
		{
			name:    "empty input",
			args:    []string{"balances", "-f", "-"},
			wantErr: "ledger file is empty",
		},
		{
			name:    "unknown key",
			stdin:   "members:\n  - name: A\nbudget: 10\n",
			args:    []string{"balances", "-f", "-"},
			wantErr: "failed to parse ledger file",
		},
		{
			name:    "no members",
			stdin:   "group: Empty\n",
			args:    []string{"balances", "-f", "-"},
			wantErr: "members",
		},
		{
			name:    "unknown payer",
			stdin:   strings.Replace(dinner, "paid_by: A", "paid_by: Z", 1),
			args:    []string{"settle", "-f", "-"},
			wantErr: "expense-1",
		},
		{
			name:    "duplicate member",
			stdin:   "members:\n  - name: A\n  - name: A\n",
			args:    []string{"balances", "-f", "-"},
			wantErr: "A",
		},
		{
			name:    "bad output format",
			stdin:   dinner,
			args:    []string{"settle", "-f", "-", "-o", "xml"},
			wantErr: `unknown output format "xml"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.stdin, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCommand_UnknownPayerKeepsErrorKind(t *testing.T) {
	_, err := run(t, strings.Replace(dinner, "paid_by: A", "paid_by: Z", 1), "settle", "-f", "-")
	var unknown *domain.UnknownMemberError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Z", unknown.MemberID)
}

func TestToken(t *testing.T) {
	out, err := run(t, "", "token", "--user", "alice", "--secret", "s3cret")
	require.NoError(t, err)

	userID, err := middleware.NewAuthenticator("s3cret").Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)
}

func TestToken_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := run(t, "", "token", "--user", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signing secret")
}
