package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"chessview/src/base"
	"chessview/src/logx"
)

type spriteKey struct {
	side base.Side
	role base.Role
}

// Sprites prefetches the piece images in the background. Until Done is
// closed Get may return nil; front-ends draw a glyph instead.
type Sprites struct {
	mu     sync.RWMutex
	images map[spriteKey]image.Image
	done   chan struct{}
	err    error
}

// spriteFiles lists the accepted file names for one piece, e.g.
// white_pawn.png or wpawn60.png.
func spriteFiles(dir string, side base.Side, role base.Role) []string {
	s := side.String()
	return []string{
		filepath.Join(dir, fmt.Sprintf("%s_%s.png", s, role)),
		filepath.Join(dir, fmt.Sprintf("%c%s60.png", s[0], role)),
	}
}

// LoadSprites starts the prefetch. An empty dir loads nothing.
func LoadSprites(ctx context.Context, dir string, log logx.Logger) *Sprites {
	sp := &Sprites{images: map[spriteKey]image.Image{}, done: make(chan struct{})}
	if dir == "" {
		close(sp.done)
		return sp
	}

	// one bad file must not abort the others
	var g errgroup.Group
	g.SetLimit(4)
	for _, side := range []base.Side{base.White, base.Black} {
		for _, role := range base.Roles() {
			key := spriteKey{side, role}
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				img, err := loadFirst(spriteFiles(dir, key.side, key.role))
				if errors.Is(err, fs.ErrNotExist) {
					log.Debugf("no sprite for %v %v", key.side, key.role)
					return nil
				}
				if err != nil {
					return err
				}
				sp.mu.Lock()
				sp.images[key] = img
				sp.mu.Unlock()
				return nil
			})
		}
	}
	go func() {
		sp.err = g.Wait()
		if sp.err != nil {
			log.Warnf("sprite prefetch: %v", sp.err)
		} else {
			log.Infof("sprites loaded from %s", dir)
		}
		close(sp.done)
	}()
	return sp
}

func loadFirst(paths []string) (image.Image, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		img, err := gg.LoadPNG(p)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", p, err)
		}
		return img, nil
	}
	return nil, fs.ErrNotExist
}

// Done is closed once the prefetch has finished.
func (sp *Sprites) Done() <-chan struct{} { return sp.done }

// Ready reports whether the prefetch has finished, without blocking.
func (sp *Sprites) Ready() bool {
	select {
	case <-sp.done:
		return true
	default:
		return false
	}
}

// Err is valid after Done.
func (sp *Sprites) Err() error {
	<-sp.done
	return sp.err
}

func (sp *Sprites) Get(side base.Side, role base.Role) image.Image {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return sp.images[spriteKey{side, role}]
}

func (sp *Sprites) Len() int {
	sp.mu.RLock()
	defer sp.mu.RUnlock()
	return len(sp.images)
}
