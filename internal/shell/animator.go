package shell

import (
	"context"
	"image"
	"time"
)

// Animator cycles through an animation's frames on a timer. It owns the
// frames; consumers receive indices and look frames up with Frame.
type Animator struct {
	frames []Frame
}

func NewAnimator(a *Animation) *Animator {
	var frames []Frame
	if a != nil {
		frames = a.Frames
	}
	return &Animator{frames: frames}
}

func (a *Animator) Len() int { return len(a.frames) }

// Frame returns frame i, wrapping around the frame count.
func (a *Animator) Frame(i int) *image.NRGBA {
	if len(a.frames) == 0 {
		return nil
	}
	return a.frames[i%len(a.frames)].Image
}

// Run publishes the index of the frame to show, starting at 0 and advancing
// after each frame's delay. A single-frame animation publishes 0 once. The
// channel is closed when ctx is cancelled.
func (a *Animator) Run(ctx context.Context) <-chan int {
	ch := make(chan int)
	go func() {
		defer close(ch)
		if len(a.frames) == 0 {
			<-ctx.Done()
			return
		}

		idx := 0
		for {
			select {
			case ch <- idx:
			case <-ctx.Done():
				return
			}
			if len(a.frames) == 1 {
				<-ctx.Done()
				return
			}

			delay := a.frames[idx].Delay
			if delay <= 0 {
				delay = DefaultDelay
			}
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return
			}
			idx = (idx + 1) % len(a.frames)
		}
	}()
	return ch
}
