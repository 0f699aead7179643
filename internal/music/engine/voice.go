package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"layeh.com/gopus"
)

const (
	channels   = 2
	sampleRate = 48000
	frameSize  = 960 // 20ms at 48kHz
)

var ErrClosed = errors.New("playback handle is closed")

// Voice is the production Engine: it plays PCM streams into Discord voice
// connections, one handle per guild.
type Voice struct {
	dg  *discordgo.Session
	log zerolog.Logger
}

func NewVoice(dg *discordgo.Session, log zerolog.Logger) *Voice {
	return &Voice{dg: dg, log: log}
}

func (v *Voice) Join(ctx context.Context, guildID, channelID string) (Handle, error) {
	vc, err := v.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	v.log.Info().Str("guild", guildID).Str("channel", channelID).Msg("joined voice channel")

	return &voiceHandle{
		vc:     vc,
		events: make(chan Event, 4),
		log:    v.log.With().Str("guild", guildID).Logger(),
	}, nil
}

type voiceHandle struct {
	mu      sync.Mutex
	vc      *discordgo.VoiceConnection
	events  chan Event
	cancel  context.CancelFunc
	paused  bool
	unpause chan struct{}
	closed  bool
	wg      sync.WaitGroup

	log zerolog.Logger
}

func (h *voiceHandle) Play(st Stream) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if h.cancel != nil {
		return errors.New("a stream is already active")
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.wg.Add(1)
	go h.run(ctx, st)
	return nil
}

func (h *voiceHandle) run(ctx context.Context, st Stream) {
	defer h.wg.Done()

	err := h.stream(ctx, st)
	if errors.Is(err, context.Canceled) {
		err = nil // stopped on purpose
	}
	if err != nil {
		h.log.Warn().Err(err).Str("title", st.Track().Title).Msg("playback ended with error")
	}

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.mu.Unlock()

	// Buffered; Close drains via wg.Wait before closing the channel.
	h.events <- Event{Err: err}
}

// stream decodes the source to PCM and pushes Opus frames until the stream
// runs dry or ctx is cancelled.
func (h *voiceHandle) stream(ctx context.Context, st Stream) error {
	rc, err := st.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}
	defer rc.Close()

	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	_ = h.vc.Speaking(true)
	defer func() { _ = h.vc.Speaking(false) }()

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := h.waitIfPaused(ctx); err != nil {
			return err
		}

		if _, err := io.ReadFull(rc, pcmBuf); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case h.vc.OpusSend <- opus:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *voiceHandle) waitIfPaused(ctx context.Context) error {
	for {
		h.mu.Lock()
		if !h.paused {
			h.mu.Unlock()
			return nil
		}
		ch := h.unpause
		h.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *voiceHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if h.paused {
		return nil
	}
	h.paused = true
	h.unpause = make(chan struct{})
	return nil
}

func (h *voiceHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	if !h.paused {
		return nil
	}
	h.paused = false
	close(h.unpause)
	return nil
}

func (h *voiceHandle) StopCurrent() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
}

func (h *voiceHandle) Events() <-chan Event {
	return h.events
}

func (h *voiceHandle) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	if h.cancel != nil {
		h.cancel()
	}
	if h.paused {
		h.paused = false
		close(h.unpause)
	}
	h.mu.Unlock()

	h.wg.Wait()
	close(h.events)

	if err := h.vc.Disconnect(); err != nil {
		h.log.Warn().Err(err).Msg("voice disconnect failed")
	}
}
