package flow

import (
	"fmt"
	"time"

	"github.com/chriscow/musickly/internal/media"
)

func lyricsPrompt(in LyricsInput) string {
	return fmt.Sprintf(`You are an AI lyricist. Generate lyrics for a song with the following characteristics:
Title: %s
Genre: %s
Mood: %s
Theme: %s

Lyrics:`, in.Title, in.Genre, in.Mood, in.Theme)
}

const songIdeaPrompt = `Generate a unique song idea for today.
It should include:
- The musical style of the song (e.g., pop, rock, jazz, electronic).
- The theme or subject matter of the song (e.g., love, loss, nature, technology).
- A suggested name for the song.

Output the result as a JSON object with the keys "style", "theme", and "name".`

func albumArtPrompt(in AlbumArtInput) string {
	return fmt.Sprintf(`Generate a high-quality, square album cover for a song titled %q. `+
		`The mood is %q and the visual style should be %q. `+
		`The image should be visually compelling and suitable for an album cover. `+
		`Do not include any text in the image.`, in.Title, in.Mood, in.Style)
}

const themeMusicPrompt = `You are a music composer who specializes in creating soundtracks based on images.
You will analyze the attached image and create a soundtrack that matches the colors, objects, and lighting in the photo.

Consider the following aspects when creating the soundtrack:
- Overall mood and atmosphere of the image
- Dominant colors and their emotional associations
- Objects and scenes depicted in the image
- Lighting conditions and their impact on the mood
- Cultural context and potential symbolism of the image

Compose a soundtrack description, including the instruments used, the tempo, and the overall style. Be detailed and descriptive.`

func mindfulnessPrompt(in MindfulnessInput) string {
	return fmt.Sprintf(`Create a soundscape for a meditation of type: %s. The duration should be %d minutes long.
The environment to simulate is: %s. Output only a single phrase that I will use in a TTS model.`,
		in.MeditationType, in.DurationMinutes, in.EnvironmentDescription)
}

func voiceToMusicPrompt(transcript string) string {
	return "Generate a full musical track based on the following vocal melody: " + transcript
}

func remixPrompt(genre, transcript string, info media.Info) string {
	source := "The track is instrumental; no lyrics could be transcribed."
	if transcript != "" {
		source = fmt.Sprintf("The track's transcribed vocals are:\n%s", transcript)
	}
	if info.Probed && info.Duration > 0 {
		source += fmt.Sprintf("\nThe original runs for %s.", info.Duration.Round(time.Second))
	}

	return fmt.Sprintf(`You are a world-class AI music remixer. A user has uploaded a track and wants you to remix it into a different genre.
%s
The target genre is: %s.

Write the remixed arrangement as a single passage to be performed by a text-to-speech voice: carry over the vocal lines, reshaped for the target genre, and describe the rhythm and instrumentation in a few vivid words.
Pay attention to harmonic structure and arrangement to create new compelling music. Output only the passage.`, source, genre)
}
