package metadata

import "github.com/marcopiovanello/yt-fetch/server/internal"

// SelectBest picks the largest video+audio format and the largest audio-only
// format. Formats without an audio track are ignored. When there is no
// audio-only candidate the video one is returned for both.
//
// Unknown or zero sizes rank lowest but still count: a zero-size format is
// picked when no candidate of its kind declares a larger size.
func SelectBest(formats []Format) (video, audio *internal.Stream) {
	var bestVideo, bestAudio *Format

	for i := range formats {
		f := &formats[i]
		if !f.HasAudio() {
			continue
		}

		if f.HasVideo() {
			if bestVideo == nil || f.Size() > bestVideo.Size() {
				bestVideo = f
			}
			continue
		}

		if bestAudio == nil || f.Size() > bestAudio.Size() {
			bestAudio = f
		}
	}

	video = toStream(bestVideo)
	audio = toStream(bestAudio)

	if audio == nil {
		audio = video
	}

	return video, audio
}

func toStream(f *Format) *internal.Stream {
	if f == nil {
		return nil
	}
	return &internal.Stream{
		URL:      f.URL,
		Ext:      f.Ext,
		ACodec:   f.ACodec,
		VCodec:   f.VCodec,
		Filesize: f.Size(),
	}
}
