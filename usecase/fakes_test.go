package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/eldanielo/ceassist/domain/entities"
	"github.com/eldanielo/ceassist/domain/repositories"
)

// captureEmitter records every envelope emitted by the pipeline.
type captureEmitter struct {
	mu        sync.Mutex
	envelopes []entities.Envelope
}

func (e *captureEmitter) Emit(env entities.Envelope) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.envelopes = append(e.envelopes, env)
	return nil
}

func (e *captureEmitter) all() []entities.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]entities.Envelope, len(e.envelopes))
	copy(out, e.envelopes)
	return out
}

func (e *captureEmitter) byType(t entities.ResponseType) []entities.Envelope {
	var out []entities.Envelope
	for _, env := range e.all() {
		if env.ResponseType == t {
			out = append(out, env)
		}
	}
	return out
}

// scriptedModel returns queued replies in order, or a fixed error.
type scriptedModel struct {
	mu        sync.Mutex
	replies   []*entities.ModelReply
	err       error
	turnsSeen [][]entities.Turn
}

func (m *scriptedModel) Advise(ctx context.Context, turns []entities.Turn) (*entities.ModelReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turnsSeen = append(m.turnsSeen, turns)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return &entities.ModelReply{}, nil
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

func (m *scriptedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turnsSeen)
}

// recordingAdvisor captures transcripts handed to Dispatch.
type recordingAdvisor struct {
	mu          sync.Mutex
	transcripts []string
	err         error
}

func (a *recordingAdvisor) Dispatch(ctx context.Context, transcript string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.transcripts = append(a.transcripts, transcript)
	return a.err
}

func (a *recordingAdvisor) dispatched() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.transcripts))
	copy(out, a.transcripts)
	return out
}

type recvItem struct {
	result *repositories.RecognitionResult
	err    error
}

// fakeStream is one scripted recognition window. Scripted results are
// delivered first; once exhausted, Recv blocks until CloseSend and then
// reports io.EOF, matching the upstream drain behavior.
type fakeStream struct {
	mu         sync.Mutex
	script     []recvItem
	pos        int
	sent       [][]byte
	sendDelay  time.Duration
	sendClosed chan struct{}
	closeOnce  sync.Once
}

func newFakeStream(script []recvItem, sendDelay time.Duration) *fakeStream {
	return &fakeStream{script: script, sendDelay: sendDelay, sendClosed: make(chan struct{})}
}

func (s *fakeStream) Send(audio []byte) error {
	if s.sendDelay > 0 {
		time.Sleep(s.sendDelay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(audio))
	copy(buf, audio)
	s.sent = append(s.sent, buf)
	return nil
}

func (s *fakeStream) CloseSend() error {
	s.closeOnce.Do(func() { close(s.sendClosed) })
	return nil
}

func (s *fakeStream) Recv() (*repositories.RecognitionResult, error) {
	s.mu.Lock()
	if s.pos < len(s.script) {
		item := s.script[s.pos]
		s.pos++
		s.mu.Unlock()
		return item.result, item.err
	}
	s.mu.Unlock()

	<-s.sendClosed
	return nil, io.EOF
}

func (s *fakeStream) Close() error { return nil }

func (s *fakeStream) sentFrames() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.sent))
	copy(out, s.sent)
	return out
}

// fakeRecognizer hands out one scripted stream per opened window.
type fakeRecognizer struct {
	mu        sync.Mutex
	scripts   [][]recvItem
	streams   []*fakeStream
	sendDelay time.Duration
	openErr   error
}

func (r *fakeRecognizer) OpenStream(ctx context.Context, config repositories.RecognitionConfig) (repositories.RecognitionStream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.openErr != nil {
		return nil, r.openErr
	}
	var script []recvItem
	if len(r.scripts) > 0 {
		script = r.scripts[0]
		r.scripts = r.scripts[1:]
	}
	stream := newFakeStream(script, r.sendDelay)
	r.streams = append(r.streams, stream)
	return stream, nil
}

func (r *fakeRecognizer) opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

func (r *fakeRecognizer) stream(i int) *fakeStream {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.streams[i]
}

// recordingStore captures transcript persistence calls.
type recordingStore struct {
	mu    sync.Mutex
	calls []storeCall
	err   error
}

type storeCall struct {
	identity entities.Identity
	lines    []string
}

func (s *recordingStore) Store(ctx context.Context, identity entities.Identity, lines []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, storeCall{identity: identity, lines: lines})
	return s.err
}

func (s *recordingStore) stored() []storeCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storeCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// fakeConn simulates a client that sends the given frames and disconnects.
type fakeConn struct {
	captureEmitter

	inbound   chan []byte
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newFakeConn(frames ...[]byte) *fakeConn {
	inbound := make(chan []byte, len(frames))
	for _, f := range frames {
		inbound <- f
	}
	close(inbound)
	return &fakeConn{inbound: inbound, closeCh: make(chan struct{})}
}

func (c *fakeConn) ReadFrame() ([]byte, error) {
	select {
	case <-c.closeCh:
		return nil, errors.New("connection closed")
	case frame, ok := <-c.inbound:
		if !ok {
			return nil, errors.New("client disconnected")
		}
		return frame, nil
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closeCh) })
	return nil
}
