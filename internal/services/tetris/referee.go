package tetris

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
)

// ErrUnreadableInput は操作列の行を読む前に入力が終わったかエラーになったことを表します。
var ErrUnreadableInput = errors.New("unreadable input")

// State はセッションの状態です。
type State int

const (
	StateAwaitingPiece State = iota
	StateInteractiveRound
	StateScored
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateAwaitingPiece:
		return "awaiting_piece"
	case StateInteractiveRound:
		return "interactive_round"
	case StateScored:
		return "scored"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Status はセッションの最終判定です。
type Status int

const (
	StatusOK                Status = iota // 目標スコアに到達
	StatusWrongAnswer                     // ピースを置けなかった
	StatusPresentationError               // 入力が読めない、または不正な操作
)

// 判定ごとのプロセス終了コードです。
const (
	ExitCodeOK = 0
	ExitCodeWA = 1
	ExitCodePE = 2
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWrongAnswer:
		return "WrongAnswer"
	default:
		return "PresentationError"
	}
}

// ExitCode は判定に対応するプロセス終了コードを返します。
func (s Status) ExitCode() int {
	switch s {
	case StatusOK:
		return ExitCodeOK
	case StatusWrongAnswer:
		return ExitCodeWA
	default:
		return ExitCodePE
	}
}

// StatusFromError はラウンドのエラーを判定に変換します。
func StatusFromError(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, tetris.ErrNoLegalPlacement):
		return StatusWrongAnswer
	default:
		return StatusPresentationError
	}
}

// Outcome はセッション終了時の結果です。
type Outcome struct {
	Status Status `json:"status"`
	Score  uint64 `json:"score"`
	Rounds int    `json:"rounds"`
	Err    error  `json:"-"`
}

// RoundResult は1ラウンドの結果です。
type RoundResult struct {
	Piece   tetris.Piece `json:"piece"`
	Landing int          `json:"landing"`
	Cleared int          `json:"cleared"`
	Score   uint64       `json:"score"`
}

// SessionConfig はセッションの生成パラメータです。
type SessionConfig struct {
	Target  uint64
	Seed    [32]byte
	Mode    Mode
	Kinds   []tetris.PieceType // 空ならモードの既定値
	GameLog *GameLog
	Logger  *log.Logger
	Debug   bool
}

// Session はインタラクター1回分のゲーム状態です。
// 乱数生成器とスコアもここに持ち、グローバルな状態は使いません。
type Session struct {
	ID     string
	board  tetris.Board
	rng    *rand.Rand
	score  uint64
	target uint64
	kinds  []tetris.PieceType
	mode   Mode
	state  State
	rounds int

	gameLog *GameLog
	logger  *log.Logger
	debug   bool
}

// NewSession は新しいセッションを作成します。同じSeedからは同じピース列が生成されます。
func NewSession(cfg SessionConfig) *Session {
	kinds := cfg.Kinds
	if len(kinds) == 0 {
		kinds = cfg.Mode.DefaultKinds()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Session{
		ID:      uuid.New().String(),
		board:   tetris.NewBoard(),
		rng:     rand.New(rand.NewChaCha8(cfg.Seed)),
		target:  cfg.Target,
		kinds:   kinds,
		mode:    cfg.Mode,
		state:   StateAwaitingPiece,
		gameLog: cfg.GameLog,
		logger:  logger,
		debug:   cfg.Debug,
	}
}

// Score は現在のスコアです。
func (s *Session) Score() uint64 { return s.score }

// State は現在の状態です。
func (s *Session) State() State { return s.state }

// Board は現在のボードのコピーです。
func (s *Session) Board() tetris.Board { return s.board.Clone() }

// Done は目標スコアに到達したかどうかです。
func (s *Session) Done() bool { return s.score >= s.target }

// Spawn は有効な種類から一様にピースを選び、回転0で置ける列から一様に出現位置を決めます。
func (s *Session) Spawn() tetris.Piece {
	piece := tetris.Piece{Type: s.kinds[s.rng.IntN(len(s.kinds))]}
	piece.Offset = s.rng.IntN(piece.MaxOffset()) + 1
	s.state = StateInteractiveRound
	return piece
}

// ApplyRound は操作列の1行をピースに適用し、落下・固定・ライン消去を行います。
// 不正なトークンがあればボードに触れずに ErrMalformedCommand を返し、
// 置けない場合は tetris.ErrNoLegalPlacement を返します。どちらの場合もセッションは終了します。
func (s *Session) ApplyRound(piece tetris.Piece, line string) (RoundResult, error) {
	commands, err := ParseCommands(line)
	if err != nil {
		s.state = StateGameOver
		return RoundResult{Piece: piece, Score: s.score}, err
	}
	ApplyCommands(&piece, commands)

	landing, err := tetris.Place(&s.board, piece)
	if err != nil {
		s.state = StateGameOver
		s.logger.Printf("[Session %s] %v", s.ID, err)
		return RoundResult{Piece: piece, Score: s.score}, err
	}
	s.score += uint64(landing.Cleared)
	s.rounds++
	if s.debug {
		s.logger.Printf("[Session %s] %s offset %d rotation %d landed on row %d, cleared %d\n%s",
			s.ID, piece.Type, piece.Offset, piece.Rotation, landing.Row, landing.Cleared, s.board.String())
	}
	if s.Done() {
		s.state = StateScored
	} else {
		s.state = StateAwaitingPiece
	}
	return RoundResult{Piece: piece, Landing: landing.Row, Cleared: landing.Cleared, Score: s.score}, nil
}

// readLine は1行を読みます。改行のない最終行も1行として扱います。
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return line, nil
		}
		return "", fmt.Errorf("%w: %v", ErrUnreadableInput, err)
	}
	return line, nil
}

// Play は目標スコアに達するか失敗するまでラウンドを繰り返します。
// 終了後はゲームオーバー通知 "0" を書き出し、相手の最後の1行を待ってから戻ります。
func (s *Session) Play(ctx context.Context, r io.Reader, w io.Writer) Outcome {
	in := bufio.NewReader(r)
	out := bufio.NewWriter(w)
	s.logger.Printf("[Session %s] started: mode=%s target=%d kinds=%v", s.ID, s.mode, s.target, s.kinds)

	err := s.loop(ctx, in, out)
	outcome := Outcome{Status: StatusFromError(err), Score: s.score, Rounds: s.rounds, Err: err}
	if err != nil {
		s.state = StateGameOver
	}
	s.logger.Printf("[Session %s] %s. Score: %d (rounds: %d)", s.ID, outcome.Status, s.score, s.rounds)
	if err != nil {
		s.logger.Printf("[Session %s] reason: %v", s.ID, err)
	}

	fmt.Fprintln(out, "0")
	if err := out.Flush(); err != nil {
		s.logger.Printf("[Session %s] failed to signal game over: %v", s.ID, err)
	}
	// 相手の最後の応答を待つ (内容は問わない)
	_, _ = in.ReadString('\n')
	return outcome
}

func (s *Session) loop(ctx context.Context, in *bufio.Reader, out *bufio.Writer) error {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnreadableInput, err)
		}
		piece := s.Spawn()
		announcement := FormatAnnouncement(piece, s.mode)
		if _, err := fmt.Fprintln(out, announcement); err != nil {
			return fmt.Errorf("%w: announce: %v", ErrUnreadableInput, err)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("%w: announce: %v", ErrUnreadableInput, err)
		}
		s.gameLog.Announce(piece)

		line, err := readLine(in)
		if err != nil {
			return err
		}
		s.gameLog.Commands(line)

		if _, err := s.ApplyRound(piece, line); err != nil {
			return err
		}
	}
	s.state = StateScored
	return nil
}

// KindsFromStrings は設定ファイルの種類名をPieceTypeに変換します。
func KindsFromStrings(names []string) ([]tetris.PieceType, error) {
	kinds := make([]tetris.PieceType, 0, len(names))
	for _, name := range names {
		kind, ok := tetris.StringToPieceType(strings.ToUpper(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unknown tetromino kind %q", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}
