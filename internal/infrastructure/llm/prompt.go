package llm

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const promptTemplate = `Analyze this news article for JUMBO Supermarkten (a major Dutch supermarket chain).
Title: %s
Summary: %s
Classify this article as either:
- Threat: Could negatively impact JUMBO's business, reputation, or operations
- Opportunity: Could benefit JUMBO or presents a business opportunity
- Neutral: No significant impact on JUMBO
Provide your response in the following format:
Classification: [Threat/Opportunity/Neutral]
Explanation: [Brief explanation of why this matters or doesn't matter to JUMBO]`

// BuildPrompt embeds the article into the fixed classification instructions.
func BuildPrompt(title, summary string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(title), plainText(summary))
}

// plainText strips markup that RSS feeds often leave in summaries.
func plainText(summary string) string {
	summary = strings.TrimSpace(summary)
	if !strings.Contains(summary, "<") {
		return summary
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(summary))
	if err != nil {
		return summary
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
