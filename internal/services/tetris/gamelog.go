package tetris

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/models/tetris"
)

// GameLog はラウンドごとに "<kind> <offset>" と操作列の2行を記録します。
// リプレイビューアはこの形式を読み込みます。nil の GameLog には何も書きません。
type GameLog struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closers []io.Closer
	err     error
}

// NewGameLog は w に書き込む GameLog を作成します。
func NewGameLog(w io.Writer) *GameLog {
	return &GameLog{w: bufio.NewWriter(w)}
}

// OpenGameLog はファイルに書き込む GameLog を作成します。
// 拡張子が .zst の場合は zstd で圧縮します。
func OpenGameLog(path string) (*GameLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("game log: create %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".zst") {
		gl := NewGameLog(f)
		gl.closers = []io.Closer{f}
		return gl, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("game log: zstd writer: %w", err)
	}
	gl := NewGameLog(enc)
	gl.closers = []io.Closer{enc, f}
	return gl, nil
}

// Announce は出現したピースを記録します。ピースの種類はモードに関係なく常に書きます。
func (g *GameLog) Announce(p tetris.Piece) {
	g.writeLine(FormatAnnouncement(p, ModeFull))
}

// Commands は受け取った操作列の行をそのまま記録します。
func (g *GameLog) Commands(line string) {
	g.writeLine(strings.TrimRight(line, "\r\n"))
}

func (g *GameLog) writeLine(line string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return
	}
	if _, err := g.w.WriteString(line + "\n"); err != nil {
		g.err = err
	}
}

// Close はバッファを書き出してファイルを閉じます。
func (g *GameLog) Close() error {
	if g == nil {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	err := g.err
	if flushErr := g.w.Flush(); err == nil {
		err = flushErr
	}
	for _, c := range g.closers {
		if closeErr := c.Close(); err == nil {
			err = closeErr
		}
	}
	g.closers = nil
	return err
}
