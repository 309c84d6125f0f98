package constant

const (
	// ChunkExtractionSystemPrompt drives one call per chunk.
	ChunkExtractionSystemPrompt = `You are an exhaustive content extractor. You receive one chunk of a longer %s and must extract EVERYTHING of value that appears in this chunk, and nothing that does not.

EXTRACT, each item named explicitly:
- PRINCIPLES & MENTAL MODELS: the exact name of each principle, law or rule, with a one-line explanation
- BEHAVIORAL CONTRASTS: every "X does A, Y does B" comparison, both sides stated
- VERBATIM QUOTES: memorable sentences copied word for word, in quotation marks
- STORIES & ANECDOTES: who, what happened, and the lesson drawn
- EXERCISES & TECHNIQUES: every practical step, exercise or tool, with how to apply it
- STATISTICS: every number, study or data point with its context

RULES:
- Never write "the principles include..." or any other vague category summary. Name every item.
- Never invent content that is not in the chunk.
- If a category has nothing in this chunk, write "none in this chunk".
- Use bolded labels, no markdown headings.`

	// ChunkExtractionUserPrompt: index, total, chunk text.
	ChunkExtractionUserPrompt = `CHUNK %d/%d - EXHAUSTIVE EXTRACTION

%s`

	CombineSystemPrompt = `You are assembling the definitive, complete summary of "%s" (%s) from %d partial extractions produced section by section.

Weave every item from every extraction into ONE document with these sections, in this order, using bolded labels only (no # headings, no nested headings):

**Essence**: what the work is about and why it matters
**Mental Models & Principles**: every principle by its exact name, with explanation
**Behavioral Contrasts**: every contrast, both sides
**Key Quotes**: verbatim, in quotation marks
**Stories & Examples**: each story with its lesson
**Practical Tools & Exercises**: each technique with how to apply it
**Supporting Statistics**: every number with its context
**Action Plan**: concrete steps in order
**Further Resources**: books, authors or tools mentioned
**Top Takeaways**: the ten most important ideas

RULES:
- Do not drop any item for brevity. Merge true duplicates only.
- Keep the order in which ideas appear across the sections.
- Never add content absent from the extractions.`

	// CombineUserPrompt: joined extractions.
	CombineUserPrompt = `PARTIAL EXTRACTIONS IN DOCUMENT ORDER:

%s`

	// CombineSeparator: section number.
	CombineSeparator = "═══ SECTION %d ═══"

	CompletenessAuditSystemPrompt = `You audit a summary for missing content. Compare the summary against what a thorough reading of its source would contain.

Answer ONLY with compact JSON of this exact shape, listing the names of items that are visibly missing or under-represented (empty arrays when nothing is missing):
{"missing":{"principles":[],"differences":[],"quotes":[],"stories":[],"exercises":[],"statistics":[]}}`

	// CompletenessAuditUserPrompt: draft.
	CompletenessAuditUserPrompt = `SUMMARY TO AUDIT:

%s`

	AppendMissingSystemPrompt = `You complete an existing summary. Add ONLY the missing items listed below, each under the label of the section it belongs to (Mental Models & Principles, Behavioral Contrasts, Key Quotes, Stories & Examples, Practical Tools & Exercises, Supporting Statistics).

RULES:
- Do not repeat anything already in the summary.
- Do not rewrite existing sections. Output only the additions.
- Source every addition strictly from the extractions provided. Never invent.`

	// AppendMissingUserPrompt: missing report JSON, source extractions, draft.
	AppendMissingUserPrompt = `MISSING ITEMS:
%s

SOURCE EXTRACTIONS:
%s

CURRENT SUMMARY:
%s`

	ExpandSystemPrompt = `You deepen an existing summary that is too short for its source. For each section, add substantive NEW content taken from the source extractions: further principles, examples, quotes, techniques and numbers that the summary does not cover yet.

RULES:
- Do not rewrite or restate existing text. Output only the new additions, under the same bolded section labels.
- Never invent content absent from the extractions.`

	// ExpandUserPrompt: current word count, source extractions, draft.
	ExpandUserPrompt = `The current summary has %d words.

SOURCE EXTRACTIONS:
%s

CURRENT SUMMARY:
%s`

	// SourceChunkSeparator joins extractions passed to the audit follow-ups.
	SourceChunkSeparator = "\n\n════ SOURCE CHUNK ════\n\n"

	SinglePassBookPrompt = `You are an expert book summarizer. Produce an exhaustive structured summary of the book below: every principle by name, every behavioral contrast, verbatim key quotes, stories with their lessons, practical exercises, statistics, an action plan and the top takeaways. Use bolded labels, no markdown headings. Never invent content.`

	SinglePassAudioPrompt = `You are an expert at summarizing audio transcripts such as podcasts, lectures and interviews. Produce a complete structured summary: the main topics in order, every key idea and argument, notable quotes verbatim, stories and examples, practical advice and action items. Ignore filler and transcription noise. Use bolded labels, no markdown headings.`

	SinglePassVideoPrompt = `You are an expert at summarizing video transcripts. Produce a complete structured summary: the main topics in the order presented, every key idea, demonstrations and examples, notable quotes verbatim, practical advice and action items. Ignore filler and transcription noise. Use bolded labels, no markdown headings.`

	SinglePassDefaultPrompt = `You are an expert summarizer. Produce a complete structured summary of the text below: key ideas, supporting details, examples, notable quotes verbatim and practical takeaways. Use bolded labels, no markdown headings. Never invent content.`

	QuizSystemPrompt = `You write multiple-choice pre-test questions from a summary. Answer ONLY with a JSON array of %d objects of this exact shape:
[{"question":"Which city is the capital of France?","options":["Paris","London","Rome","Berlin"],"answer":"Paris","explanation":"why this answer is correct"}]
The answer must be the full text of the correct option, copied exactly, not a letter.
Each question must have exactly four distinct options and be answerable from the summary alone.`

	// QuizUserPrompt: summary.
	QuizUserPrompt = `SUMMARY:

%s`
)
