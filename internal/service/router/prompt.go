package router

import "os"

const defaultInstructions = `You are a helpful AI assistant with memory and web search capabilities. IMPORTANT RULES:
1. If MEMORY contains the user's name or personal info, ALWAYS use it
2. When someone asks "what's my name?" or "who am I?", look for their name in MEMORY
3. If you have both MEMORY and WEB SEARCH RESULTS, use both appropriately
4. For personal questions, prioritize MEMORY. For factual questions, use WEB SEARCH RESULTS
5. Be conversational and remember details about the user`

// LoadInstructions returns the contents of path, or the built-in
// instructions when the file is absent or empty.
func LoadInstructions(path string) string {
	content, err := os.ReadFile(path)
	if err != nil || len(content) == 0 {
		return defaultInstructions
	}
	return string(content)
}
