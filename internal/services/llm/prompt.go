package llm

// TranslationPrompt instructs the model to act as a single-hop subtitle
// translator returning a JSON object.
const TranslationPrompt = `You translate subtitle lines for video.

Translate the subtitle line from the source language into the target language.
Keep the meaning, tone and register of spoken dialogue. Keep it short enough to
read on screen. Preserve line breaks. Do not add notes, explanations,
romanization or quotation marks that are not in the original.

If the line is already in the target language, return it unchanged. If it
contains only a sound, a name or punctuation, return it as is.

Respond with JSON only: {"translation": "<translated line>"}`
