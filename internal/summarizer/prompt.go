package summarizer

import (
	"strings"

	"github.com/samvad-hq/neura-briefing/internal/domain"
)

const promptInstructions = `Analyze these news datasets and provide a consolidated intelligence report.
For EACH topic, provide:
1. A 2-sentence 'Impact Summary'.
2. A small table: | Key Event | Sentiment | Potential Outlook |

Final section: 'Cross-Topic Synthesis' - How these areas might intersect.
Tone: Crisp, visual, minimal wall-of-text. Use bolding and emojis.

Data:
`

// BuildPrompt renders the instructions followed by one block per topic, in set order.
func BuildPrompt(set domain.TopicSet) string {
	var b strings.Builder
	b.WriteString(promptInstructions)
	for _, res := range set {
		b.WriteString("\n### TOPIC: ")
		b.WriteString(res.Topic)
		b.WriteString("\n")
		for _, itm := range res.Items {
			b.WriteString("- ")
			b.WriteString(itm.Title)
			b.WriteString(" (")
			b.WriteString(itm.Source)
			b.WriteString(")\n")
		}
	}
	return b.String()
}
