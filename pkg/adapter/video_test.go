package adapter_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/cloutcheck/pkg/adapter"
	"github.com/mchmarny/cloutcheck/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type videoMocks struct {
	extractor   *mocks.MockFrameExtractor
	images      *mocks.MockImageClassifier
	transcriber *mocks.MockTranscriber
	text        *mocks.MockTextClassifier
}

func newVideoAdapter(t *testing.T, withAudio bool) (*adapter.VideoAdapter, videoMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := videoMocks{
		extractor:   mocks.NewMockFrameExtractor(ctrl),
		images:      mocks.NewMockImageClassifier(ctrl),
		transcriber: mocks.NewMockTranscriber(ctrl),
		text:        mocks.NewMockTextClassifier(ctrl),
	}
	ta, err := adapter.NewTextAdapter(m.text)
	require.NoError(t, err)

	var tr adapter.Transcriber
	if withAudio {
		tr = m.transcriber
	}
	a, err := adapter.NewVideoAdapter(m.extractor, m.images, tr, ta, adapter.VideoOptions{
		Threshold: 0.7,
		MaxFrames: 3,
		TempDir:   t.TempDir(),
	})
	require.NoError(t, err)
	return a, m
}

func TestNewVideoAdapter_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := adapter.NewVideoAdapter(nil, mocks.NewMockImageClassifier(ctrl), nil, nil, adapter.VideoOptions{})
	assert.Error(t, err)

	_, err = adapter.NewVideoAdapter(mocks.NewMockFrameExtractor(ctrl), mocks.NewMockImageClassifier(ctrl),
		mocks.NewMockTranscriber(ctrl), nil, adapter.VideoOptions{})
	assert.Error(t, err)
}

func TestVideoAdapter_Analyze(t *testing.T) {
	ctx := context.Background()
	video := writeMP4(t, t.TempDir(), "alice_v_1.mp4")

	a, m := newVideoAdapter(t, true)

	frames := []string{"f1.jpg", "f2.jpg", "f3.jpg", "f4.jpg"}
	m.extractor.EXPECT().Frames(gomock.Any(), video, gomock.Any(), 3).Return(frames, nil)
	m.images.EXPECT().NSFW(gomock.Any(), "f1.jpg").Return(0.2, nil)
	m.images.EXPECT().NSFW(gomock.Any(), "f2.jpg").Return(0.9, nil)
	m.images.EXPECT().NSFW(gomock.Any(), "f3.jpg").Return(0.0, errors.New("bad frame"))

	m.extractor.EXPECT().Audio(gomock.Any(), video, gomock.Any()).Return("audio.wav", nil)
	m.transcriber.EXPECT().Transcribe(gomock.Any(), "audio.wav").Return("hello everyone welcome back", nil)
	m.text.EXPECT().Toxicity(gomock.Any(), "hello everyone welcome back").Return(adapter.ToxicityScores{Toxicity: 0.05}, nil)
	m.text.EXPECT().Sentiment(gomock.Any(), "hello everyone welcome back").Return(0.8, nil)

	res := a.Analyze(ctx, video)

	require.NotNil(t, res.Visual)
	assert.Equal(t, video, res.Visual.Source)
	assert.InDelta(t, 0.3667, res.Visual.NSFWScore, 0.001)
	assert.True(t, res.Visual.IsNSFW, "max frame drives the flag")
	require.NotNil(t, res.Visual.Frames)
	assert.Equal(t, 3, res.Visual.Frames.Count)
	assert.Equal(t, 1, res.Visual.Frames.Flagged)
	assert.Equal(t, 0.9, res.Visual.Frames.Max)
	assert.Equal(t, 0.0, res.Visual.Frames.Min)

	require.NotNil(t, res.Transcript)
	assert.Equal(t, "alice_v_1.mp4", res.Transcript.Source)
	assert.Equal(t, 0.05, res.Transcript.Toxicity)
	assert.Equal(t, 0.8, res.Transcript.Sentiment)
}

func TestVideoAdapter_AverageBelowMaxAbove(t *testing.T) {
	video := writeMP4(t, t.TempDir(), "v.mp4")
	a, m := newVideoAdapter(t, false)

	m.extractor.EXPECT().Frames(gomock.Any(), video, gomock.Any(), 3).Return([]string{"a", "b", "c"}, nil)
	m.images.EXPECT().NSFW(gomock.Any(), "a").Return(0.05, nil)
	m.images.EXPECT().NSFW(gomock.Any(), "b").Return(0.05, nil)
	m.images.EXPECT().NSFW(gomock.Any(), "c").Return(0.75, nil)

	res := a.Analyze(context.Background(), video)
	require.NotNil(t, res.Visual)
	assert.Less(t, res.Visual.NSFWScore, 0.7)
	assert.True(t, res.Visual.IsNSFW)
	assert.Nil(t, res.Transcript)
}

func TestVideoAdapter_Failures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		a, _ := newVideoAdapter(t, true)
		res := a.Analyze(ctx, filepath.Join(dir, "nope.mp4"))
		assert.Nil(t, res.Visual)
		assert.Nil(t, res.Transcript)
	})

	t.Run("not a video", func(t *testing.T) {
		p := filepath.Join(dir, "text.mp4")
		require.NoError(t, os.WriteFile(p, []byte("plain text pretending to be a video"), 0600))
		a, _ := newVideoAdapter(t, true)
		res := a.Analyze(ctx, p)
		assert.Nil(t, res.Visual)
	})

	t.Run("no frames and no audio", func(t *testing.T) {
		video := writeMP4(t, dir, "empty.mp4")
		a, m := newVideoAdapter(t, true)
		m.extractor.EXPECT().Frames(gomock.Any(), video, gomock.Any(), 3).Return(nil, nil)
		m.extractor.EXPECT().Audio(gomock.Any(), video, gomock.Any()).Return("", errors.New("no audio stream"))

		res := a.Analyze(ctx, video)
		assert.Nil(t, res.Visual)
		assert.Nil(t, res.Transcript)
	})

	t.Run("blank transcript", func(t *testing.T) {
		video := writeMP4(t, dir, "quiet.mp4")
		a, m := newVideoAdapter(t, true)
		m.extractor.EXPECT().Frames(gomock.Any(), video, gomock.Any(), 3).Return(nil, errors.New("ffmpeg missing"))
		m.extractor.EXPECT().Audio(gomock.Any(), video, gomock.Any()).Return("a.wav", nil)
		m.transcriber.EXPECT().Transcribe(gomock.Any(), "a.wav").Return("  ", nil)

		res := a.Analyze(ctx, video)
		assert.Nil(t, res.Visual)
		assert.Nil(t, res.Transcript)
	})
}

func TestFrameStats(t *testing.T) {
	s := adapter.FrameStats(nil, 0.7)
	assert.Zero(t, s.Count)
	assert.Zero(t, s.Avg)

	s = adapter.FrameStats([]float64{0.1, 0.8, 0.3}, 0.7)
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 1, s.Flagged)
	assert.InDelta(t, 0.4, s.Avg, 1e-9)
	assert.Equal(t, 0.8, s.Max)
	assert.Equal(t, 0.1, s.Min)
}
