// Package replay はインタラクターが書いたゲームログを読み込み、ラウンドごとの盤面を再現します。
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
	game "github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/services/tetris"
)

// Round はゲームログの1ラウンド分 (告知行と操作列の行) です。
type Round struct {
	Piece       tetris.Piece `json:"piece"`
	CommandLine string       `json:"commands"`
	Answered    bool         `json:"answered"` // 操作列の行まで記録されているか
}

// Frame はラウンド終了時点の盤面です。
type Frame struct {
	Round    int      `json:"round"`
	Kind     string   `json:"kind"`
	Spawn    int      `json:"spawn"`
	Offset   int      `json:"offset"`
	Rotation int      `json:"rotation"`
	Commands string   `json:"commands"`
	Landing  int      `json:"landing"`
	Cleared  int      `json:"cleared"`
	Score    uint64   `json:"score"`
	Board    []string `json:"board"` // 上の行から
	GameOver bool     `json:"game_over"`
	Reason   string   `json:"reason,omitempty"`
}

// Parse はゲームログを読み込みます。最後の告知行に操作列がない場合は Answered=false のラウンドになります。
func Parse(r io.Reader) ([]Round, error) {
	in := bufio.NewReader(r)
	var rounds []Round
	lineNo := 0
	awaitingCommands := false
	for {
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("replay: read: %w", err)
		}
		if line == "" && err != nil {
			break
		}
		lineNo++
		line = strings.TrimRight(line, "\r\n")
		if awaitingCommands {
			rounds[len(rounds)-1].CommandLine = line
			rounds[len(rounds)-1].Answered = true
			awaitingCommands = false
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		piece, err := game.ParsePieceLine(line, game.ModeFull)
		if err != nil {
			return nil, fmt.Errorf("replay: line %d: %w", lineNo, err)
		}
		rounds = append(rounds, Round{Piece: piece})
		awaitingCommands = true
	}
	return rounds, nil
}

// Open はファイルからゲームログを読み込みます。拡張子 .zst のファイルは zstd で展開します。
func Open(path string) ([]Round, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return Parse(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("replay: zstd reader: %w", err)
	}
	defer dec.Close()
	return Parse(dec)
}

// Replay はインタラクターと同じ規則でラウンドを順に適用し、各ラウンド後の盤面を返します。
// 不正な操作や置けないピースが出た時点で GameOver のフレームを返して終了します。
func Replay(rounds []Round) []Frame {
	session := game.NewSession(game.SessionConfig{Target: ^uint64(0)})
	frames := make([]Frame, 0, len(rounds))
	for i, round := range rounds {
		frame := Frame{
			Round:    i + 1,
			Kind:     round.Piece.Type.String(),
			Spawn:    round.Piece.Offset,
			Commands: strings.TrimSpace(round.CommandLine),
		}
		if !round.Answered {
			frame.GameOver = true
			frame.Reason = "no response"
			frame.Score = session.Score()
			frame.Board = boardRows(session)
			return append(frames, frame)
		}

		res, err := session.ApplyRound(round.Piece, round.CommandLine)
		frame.Offset = res.Piece.Offset
		frame.Rotation = res.Piece.Rotation
		frame.Landing = res.Landing
		frame.Cleared = res.Cleared
		frame.Score = res.Score
		frame.Board = boardRows(session)
		if err != nil {
			frame.GameOver = true
			frame.Reason = reason(err)
			return append(frames, frame)
		}
		frames = append(frames, frame)
	}
	return frames
}

func boardRows(s *game.Session) []string {
	board := s.Board()
	return board.Rows()
}

func reason(err error) string {
	switch {
	case errors.Is(err, game.ErrMalformedCommand):
		return "malformed command"
	case errors.Is(err, tetris.ErrNoLegalPlacement):
		return "no legal placement"
	default:
		return err.Error()
	}
}
