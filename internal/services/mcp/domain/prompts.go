package domain

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func promptResult(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}

func promptArgument(req *mcp.GetPromptRequest, name string) string {
	if req == nil || req.Params == nil {
		return ""
	}
	return req.Params.Arguments[name]
}

// ProfileSummaryPrompt defines the prompt for summarizing a member profile.
func ProfileSummaryPrompt() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        "linkedin_profile_summary",
		Description: "Summarizes a LinkedIn profile for a given session",
		Arguments: []*mcp.PromptArgument{
			{Name: "session_id", Description: "Session to summarize (defaults to the most recent)", Required: false},
		},
	}
}

// ProfileSummaryPromptHandler renders the profile summary prompt.
func ProfileSummaryPromptHandler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		sessionID := promptArgument(req, "session_id")
		instruction := "Read the linkedin://profile resource for the current session and write a concise professional summary of the member: who they are, their background, and what stands out."
		if sessionID != "" {
			instruction = fmt.Sprintf("Read the resource linkedin://profile/%s and write a concise professional summary of the member: who they are, their background, and what stands out.", sessionID)
		}
		return promptResult("Summarize a LinkedIn profile", instruction), nil
	}
}

// NetworkingStrategyPrompt defines the prompt for networking advice.
func NetworkingStrategyPrompt() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        "linkedin_networking_strategy",
		Description: "Builds a networking strategy from the member's connections",
		Arguments: []*mcp.PromptArgument{
			{Name: "goal", Description: "Networking goal, e.g. finding a role or growing an audience", Required: false},
		},
	}
}

// NetworkingStrategyPromptHandler renders the networking strategy prompt.
func NetworkingStrategyPromptHandler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		goal := promptArgument(req, "goal")
		if goal == "" {
			goal = "growing a relevant professional network"
		}
		text := fmt.Sprintf("Use the linkedin_connections and linkedin_profile tools to review the member's network, then propose a practical networking strategy focused on %s. Name concrete next steps and the kinds of people to reach out to.", goal)
		return promptResult("Plan a networking strategy", text), nil
	}
}

// ContentCreationPrompt defines the prompt for content planning.
func ContentCreationPrompt() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        "linkedin_content_ideas",
		Description: "Suggests LinkedIn content ideas for the member",
		Arguments: []*mcp.PromptArgument{
			{Name: "topic", Description: "Topic or industry to write about", Required: false},
		},
	}
}

// ContentCreationPromptHandler renders the content planning prompt.
func ContentCreationPromptHandler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		topic := promptArgument(req, "topic")
		if topic == "" {
			topic = "the member's field"
		}
		text := fmt.Sprintf("Review the member's profile with linkedin_profile and propose five LinkedIn post ideas about %s. For each idea give a hook, the angle, and why it fits the member's background.", topic)
		return promptResult("Suggest LinkedIn content ideas", text), nil
	}
}

// PostCopywriterPrompt defines the prompt for drafting a post.
func PostCopywriterPrompt() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        "linkedin_post_copywriter",
		Description: "Drafts a LinkedIn post ready to publish with linkedin_share",
		Arguments: []*mcp.PromptArgument{
			{Name: "subject", Description: "What the post is about", Required: true},
			{Name: "tone", Description: "Desired tone, e.g. conversational or formal", Required: false},
		},
	}
}

// PostCopywriterPromptHandler renders the post drafting prompt.
func PostCopywriterPromptHandler() mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		subject := promptArgument(req, "subject")
		if subject == "" {
			return nil, fmt.Errorf("subject argument is required")
		}
		tone := promptArgument(req, "tone")
		if tone == "" {
			tone = "conversational"
		}
		text := fmt.Sprintf("Draft a LinkedIn post about %s in a %s tone. Keep it under 1300 characters, open with a strong hook, and end with a question for the audience. When the member approves the draft, publish it with the linkedin_share tool.", subject, tone)
		return promptResult("Draft a LinkedIn post", text), nil
	}
}
