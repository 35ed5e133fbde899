package tetris

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
)

// CeilingRow はこの行に届く配置を使わないとみなす行です。
// 置けたとしても天井まで積み上がるため、候補から外します。
const CeilingRow = tetris.BoardHeight - 1

// Plan はプランナーが選んだ配置と、そこへ到達する操作列です。
type Plan struct {
	Spawn    tetris.Piece `json:"spawn"`
	Target   tetris.Piece `json:"target"`
	Landing  int          `json:"landing"`
	Stats    tetris.Stats `json:"stats"`
	Commands []Command    `json:"commands"` // 回転の右端補正が効く配置では移動と回転が交互になることがある
}

// Planner はオフライン側のソリューションです。
// 自分のボードを持ち、ピースごとに全配置を試して最も評価の良いものを選びます。
type Planner struct {
	board  tetris.Board
	mode   Mode
	logger *log.Logger
	debug  bool
}

// NewPlanner は空のボードを持つプランナーを作成します。
func NewPlanner(mode Mode, logger *log.Logger, debug bool) *Planner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Planner{
		board:  tetris.NewBoard(),
		mode:   mode,
		logger: logger,
		debug:  debug,
	}
}

// Board は現在のボードのコピーを返します。
func (p *Planner) Board() tetris.Board {
	return p.board.Clone()
}

// Plan は出現したピースの全 (offset, rotation) を試し、(Peak, Holes) が最小の配置を選びます。
// 同点の場合は列の小さい方、次に回転の小さい方を優先します。ボードは変更しません。
//
// Parameters:
//
//	spawn : 出現時のピース (回転0)
//
// Returns:
//
//	*Plan : 選ばれた配置と操作列
//	error : 使える配置が1つもない場合は tetris.ErrNoLegalPlacement
func (p *Planner) Plan(spawn tetris.Piece) (*Plan, error) {
	var best *Plan
	for offset := 1; offset <= tetris.BoardWidth; offset++ {
		for rotation := 0; rotation < 360; rotation += 90 {
			candidate := tetris.Piece{Type: spawn.Type, Offset: offset, Rotation: rotation}
			sim, placement := tetris.Simulate(&p.board, candidate)
			if !placement.Landed {
				continue
			}
			if placement.Row+candidate.Height()-1 >= CeilingRow {
				continue
			}
			stats := sim.Stats()
			if best == nil || stats.Less(best.Stats) {
				best = &Plan{Target: candidate, Landing: placement.Row, Stats: stats}
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%s at offset %d: %w", spawn.Type, spawn.Offset, tetris.ErrNoLegalPlacement)
	}
	best.Spawn = spawn
	best.Commands = commandsFor(spawn, best.Target)
	return best, nil
}

// Commit は選んだ配置を自分のボードに反映し、ラインを消去します。
// インタラクター側と同じ tetris.Place を使うので、両者のボードは常に一致します。
func (p *Planner) Commit(plan *Plan) (tetris.Landing, error) {
	target := plan.Spawn
	ApplyCommands(&target, plan.Commands)
	landing, err := tetris.Place(&p.board, target)
	if err != nil {
		return tetris.Landing{}, err
	}
	if p.debug {
		p.logger.Printf("[Planner] placed %s at offset %d rotation %d, cleared %d\n%s",
			target.Type, target.Offset, target.Rotation, landing.Cleared, p.board.String())
	}
	return landing, nil
}

// commandsFor はピースを spawn から target へ動かす操作列を作ります。
// 基本は移動をすべて先に出してから回転します。回転時の右端補正で目標列からずれる場合は、
// 一度左端へ寄せてから回転し、右へ移動する順に切り替えます。
func commandsFor(spawn, target tetris.Piece) []Command {
	rotations := tetris.NormalizeRotation(target.Rotation) / 90

	var commands []Command
	commands = appendShifts(commands, target.Offset-spawn.Offset)
	commands = appendRepeated(commands, CommandRotate, rotations)
	if reaches(spawn, commands, target) {
		return commands
	}

	commands = commands[:0]
	commands = appendRepeated(commands, CommandShiftLeft, spawn.Offset-1)
	commands = appendRepeated(commands, CommandRotate, rotations)
	commands = appendRepeated(commands, CommandShiftRight, target.Offset-1)
	return commands
}

func appendShifts(commands []Command, delta int) []Command {
	if delta < 0 {
		return appendRepeated(commands, CommandShiftLeft, -delta)
	}
	return appendRepeated(commands, CommandShiftRight, delta)
}

func appendRepeated(commands []Command, c Command, n int) []Command {
	for i := 0; i < n; i++ {
		commands = append(commands, c)
	}
	return commands
}

func reaches(spawn tetris.Piece, commands []Command, target tetris.Piece) bool {
	ApplyCommands(&spawn, commands)
	return spawn.Offset == target.Offset && spawn.Blocks() == target.Blocks()
}

// Run は告知行を1行読むたびに操作列を1行書き出します。
// インタラクターのゲームオーバー通知 "0" か入力の終端で正常終了します。
func (p *Planner) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)
	for round := 1; ; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read piece line: %w", err)
			}
			p.logger.Printf("[Planner] input closed after %d rounds", round-1)
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "0" {
			p.logger.Printf("[Planner] game over signalled after %d rounds", round-1)
			return nil
		}

		spawn, err := ParsePieceLine(line, p.mode)
		if err != nil {
			return err
		}

		plan, err := p.Plan(spawn)
		if err != nil {
			// 置ける場所がない場合は何もせずに落とし、判定はインタラクターに任せる
			if !errors.Is(err, tetris.ErrNoLegalPlacement) {
				return err
			}
			p.logger.Printf("[Planner] round %d: %v", round, err)
			plan = &Plan{Spawn: spawn, Target: spawn}
		}

		if _, err := fmt.Fprintln(out, FormatCommands(plan.Commands)); err != nil {
			return fmt.Errorf("write commands: %w", err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("flush commands: %w", err)
		}

		if _, err := p.Commit(plan); err != nil {
			p.logger.Printf("[Planner] round %d: %v", round, err)
		}
	}
}
