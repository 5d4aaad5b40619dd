package service

import (
	"filegate/internal/domain"
	"filegate/internal/vision"
)

const audioPrompt = `This link points to an audio file. If you can access it:
1. Summarize what the recording is about.
2. Transcribe any speech, noting distinct speakers where possible.
3. Describe notable music, sounds or background noise.`

const videoPrompt = `This link points to a video file. If you can access it:
1. Summarize what happens in the video.
2. Describe the key scenes, people and objects that appear.
3. Transcribe any on-screen text or spoken dialogue.`

const pdfPrompt = `Extract the complete text content of this PDF document.
Preserve headings, lists and paragraph structure, and render tables as Markdown tables.
If a page is an image, transcribe the visible text on it.`

// defaultPrompts holds the built-in prompt for each AI-handled category.
var defaultPrompts = map[domain.FileCategory]string{
	domain.CategoryImage: vision.DefaultAnalysisPrompt,
	domain.CategoryAudio: audioPrompt,
	domain.CategoryVideo: videoPrompt,
	domain.CategoryPDF:   pdfPrompt,
}
