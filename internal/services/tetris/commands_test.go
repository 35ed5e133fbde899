package tetris

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
)

func TestParseCommands(t *testing.T) {
	commands, err := ParseCommands("shift_left rotate  shift_right \r\n")
	require.NoError(t, err)
	assert.Equal(t, []Command{CommandShiftLeft, CommandRotate, CommandShiftRight}, commands)

	commands, err = ParseCommands("\n")
	require.NoError(t, err)
	assert.Empty(t, commands)
}

func TestParseCommands_MalformedToken(t *testing.T) {
	_, err := ParseCommands("shift_left fly rotate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedCommand))
	assert.Contains(t, err.Error(), "fly")

	// ASCII以外の空白ではトークンが分かれない
	for _, line := range []string{"shift_left\u00a0rotate", "rotate\u2003rotate", "shift_right\u0085"} {
		_, err := ParseCommands(line)
		assert.True(t, errors.Is(err, ErrMalformedCommand), "%q", line)
	}

	commands, err := ParseCommands("rotate\tshift_left\vshift_right\f")
	require.NoError(t, err)
	assert.Equal(t, []Command{CommandRotate, CommandShiftLeft, CommandShiftRight}, commands)
}

func TestFormatCommands(t *testing.T) {
	assert.Equal(t, "", FormatCommands(nil))
	assert.Equal(t, "shift_right rotate", FormatCommands([]Command{CommandShiftRight, CommandRotate}))
}

func TestApplyCommands_TenShiftLeftsClampAtOne(t *testing.T) {
	piece := tetris.Piece{Type: tetris.TypeO, Offset: 5}
	commands, err := ParseCommands(strings.Repeat("shift_left ", 10))
	require.NoError(t, err)

	ApplyCommands(&piece, commands)
	assert.Equal(t, 1, piece.Offset)
}

// TestApplyCommands_OffsetStaysInRange は任意の操作列の後でもOffsetが有効範囲に収まることを確認します。
func TestApplyCommands_OffsetStaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	all := []Command{CommandShiftLeft, CommandShiftRight, CommandRotate}
	for _, kind := range tetris.AllPieceTypes {
		for i := 0; i < 200; i++ {
			piece := tetris.Piece{Type: kind}
			piece.Offset = rng.IntN(piece.MaxOffset()) + 1
			for j := rng.IntN(30); j > 0; j-- {
				ApplyCommand(&piece, all[rng.IntN(len(all))])
				require.GreaterOrEqual(t, piece.Offset, 1)
				require.LessOrEqual(t, piece.Offset, tetris.BoardWidth-piece.Width()+1, "%+v", piece)
			}
		}
	}
}

func TestParsePieceLine(t *testing.T) {
	piece, err := ParsePieceLine("T 3\n", ModeFull)
	require.NoError(t, err)
	assert.Equal(t, tetris.Piece{Type: tetris.TypeT, Offset: 3}, piece)

	piece, err = ParsePieceLine("7", ModeOOnly)
	require.NoError(t, err)
	assert.Equal(t, tetris.Piece{Type: tetris.TypeO, Offset: 7}, piece)

	piece, err = ParsePieceLine("O 9", ModeOOnly)
	require.NoError(t, err)
	assert.Equal(t, tetris.Piece{Type: tetris.TypeO, Offset: 9}, piece)

	for _, line := range []string{"", "7", "X 3", "T", "T abc", "I 11", "O 10", "T 0", "T 1 2"} {
		_, err := ParsePieceLine(line, ModeFull)
		assert.True(t, errors.Is(err, ErrParseFailure), "line %q", line)
	}
}

func TestFormatAnnouncement(t *testing.T) {
	piece := tetris.Piece{Type: tetris.TypeO, Offset: 4}
	assert.Equal(t, "O 4", FormatAnnouncement(piece, ModeFull))
	assert.Equal(t, "4", FormatAnnouncement(piece, ModeOOnly))
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeFull, mode)

	mode, err = ParseMode("O-Only")
	require.NoError(t, err)
	assert.Equal(t, ModeOOnly, mode)
	assert.Equal(t, []tetris.PieceType{tetris.TypeO}, mode.DefaultKinds())

	_, err = ParseMode("tetris-99")
	assert.Error(t, err)
}

func TestMode_CheckKinds(t *testing.T) {
	assert.NoError(t, ModeFull.CheckKinds(tetris.AllPieceTypes))
	assert.NoError(t, ModeOOnly.CheckKinds([]tetris.PieceType{tetris.TypeO}))
	assert.NoError(t, ModeOOnly.CheckKinds(nil))
	assert.Error(t, ModeOOnly.CheckKinds([]tetris.PieceType{tetris.TypeO, tetris.TypeI}))
}
