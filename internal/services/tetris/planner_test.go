package tetris

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
)

func TestPlanner_EmptyBoardOGoesToLeftWall(t *testing.T) {
	planner := NewPlanner(ModeFull, nil, false)

	plan, err := planner.Plan(tetris.Piece{Type: tetris.TypeO, Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, tetris.Piece{Type: tetris.TypeO, Offset: 1, Rotation: 0}, plan.Target)
	assert.Equal(t, tetris.Stats{Peak: 1, Holes: 0}, plan.Stats)
	assert.Equal(t, "shift_left shift_left shift_left shift_left", FormatCommands(plan.Commands))
}

// TestPlanner_OptimalWithinSearchSpace は選ばれた配置より厳密に良い候補がないことを総当たりで確認します。
func TestPlanner_OptimalWithinSearchSpace(t *testing.T) {
	planner := NewPlanner(ModeFull, nil, false)
	// 凸凹のある盤面を作る
	for _, p := range []tetris.Piece{
		{Type: tetris.TypeI, Offset: 1},
		{Type: tetris.TypeS, Offset: 3},
		{Type: tetris.TypeL, Offset: 6, Rotation: 90},
		{Type: tetris.TypeO, Offset: 9},
	} {
		_, err := tetris.Place(&planner.board, p)
		require.NoError(t, err)
	}

	for _, kind := range tetris.AllPieceTypes {
		spawn := tetris.Piece{Type: kind, Offset: 1}
		plan, err := planner.Plan(spawn)
		require.NoError(t, err)

		for offset := 1; offset <= tetris.BoardWidth; offset++ {
			for rotation := 0; rotation < 360; rotation += 90 {
				candidate := tetris.Piece{Type: kind, Offset: offset, Rotation: rotation}
				board := planner.Board()
				sim, placement := tetris.Simulate(&board, candidate)
				if !placement.Landed || placement.Row+candidate.Height()-1 >= CeilingRow {
					continue
				}
				assert.False(t, sim.Stats().Less(plan.Stats), "%s: %+v beats %+v", kind, candidate, plan.Target)
			}
		}

		got := spawn
		ApplyCommands(&got, plan.Commands)
		assert.Equal(t, plan.Target.Offset, got.Offset, "%s", kind)
		assert.Equal(t, plan.Target.Blocks(), got.Blocks(), "%s", kind)
	}
}

func TestCommandsFor_ShiftsBeforeRotations(t *testing.T) {
	commands := commandsFor(
		tetris.Piece{Type: tetris.TypeT, Offset: 5},
		tetris.Piece{Type: tetris.TypeT, Offset: 2, Rotation: 90},
	)
	assert.Equal(t, []Command{CommandShiftLeft, CommandShiftLeft, CommandShiftLeft, CommandRotate}, commands)
}

func TestCommandsFor_FallsBackWhenRotationWouldClamp(t *testing.T) {
	// Jを9列目に寄せてから回転すると90度で幅3になり8列目へ戻されるため、
	// 左端で回転してから右へ移動する
	spawn := tetris.Piece{Type: tetris.TypeJ, Offset: 1}
	target := tetris.Piece{Type: tetris.TypeJ, Offset: 9, Rotation: 180}

	commands := commandsFor(spawn, target)
	assert.Equal(t, "rotate rotate "+strings.TrimSpace(strings.Repeat("shift_right ", 8)), FormatCommands(commands))

	got := spawn
	ApplyCommands(&got, commands)
	assert.Equal(t, target, got)
}

func TestCommandsFor_AlwaysReachesTarget(t *testing.T) {
	for _, kind := range tetris.AllPieceTypes {
		for spawnOffset := 1; spawnOffset <= tetris.BoardWidth-tetris.WidthAt(kind, 0)+1; spawnOffset++ {
			for rotation := 0; rotation < 360; rotation += 90 {
				for offset := 1; offset <= tetris.BoardWidth-tetris.WidthAt(kind, rotation)+1; offset++ {
					spawn := tetris.Piece{Type: kind, Offset: spawnOffset}
					target := tetris.Piece{Type: kind, Offset: offset, Rotation: rotation}
					assert.True(t, reaches(spawn, commandsFor(spawn, target), target), "%+v -> %+v", spawn, target)
				}
			}
		}
	}
}

func TestPlanner_SkipsPlacementsTouchingCeiling(t *testing.T) {
	planner := NewPlanner(ModeFull, nil, false)
	for y := 0; y < 18; y++ {
		for x := 0; x < tetris.BoardWidth-1; x++ {
			planner.board[y][x] = tetris.CellOccupied
		}
	}

	// O はどこに置いても19行目に届く
	_, err := planner.Plan(tetris.Piece{Type: tetris.TypeO, Offset: 1})
	assert.True(t, errors.Is(err, tetris.ErrNoLegalPlacement))

	// 縦のIは右端の溝に入る
	plan, err := planner.Plan(tetris.Piece{Type: tetris.TypeI, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 10, plan.Target.Offset)
	assert.Equal(t, 0, plan.Target.Rotation)
	assert.Equal(t, 0, plan.Landing)
}

func TestPlanner_CommitMirrorsReferee(t *testing.T) {
	planner := NewPlanner(ModeFull, nil, false)
	for _, offset := range []int{1, 3, 5, 7} {
		_, err := tetris.Place(&planner.board, tetris.Piece{Type: tetris.TypeO, Offset: offset})
		require.NoError(t, err)
	}

	plan, err := planner.Plan(tetris.Piece{Type: tetris.TypeO, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 9, plan.Target.Offset)

	landing, err := planner.Commit(plan)
	require.NoError(t, err)
	assert.Equal(t, 2, landing.Cleared)
	board := planner.Board()
	assert.Equal(t, 0, board.OccupiedCount())
}

func TestPlanner_RunProtocol(t *testing.T) {
	planner := NewPlanner(ModeFull, nil, false)
	var out strings.Builder

	err := planner.Run(context.Background(), strings.NewReader("O 5\nO 5\n0\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "shift_left shift_left shift_left shift_left\nshift_left shift_left\n", out.String())
}

func TestPlanner_RunOOnlyMode(t *testing.T) {
	planner := NewPlanner(ModeOOnly, nil, false)
	var out strings.Builder

	err := planner.Run(context.Background(), strings.NewReader("1\n1\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "\nshift_right shift_right\n", out.String())
}

func TestPlanner_RunParseFailure(t *testing.T) {
	planner := NewPlanner(ModeFull, nil, false)
	var out strings.Builder

	err := planner.Run(context.Background(), strings.NewReader("Q 3\n"), &out)
	assert.True(t, errors.Is(err, ErrParseFailure))
	assert.Empty(t, out.String())
}
