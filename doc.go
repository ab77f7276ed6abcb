// Package garden embeds the garden search pipeline in a Go program.
//
// A Client reads articles, notes and projects from Valkey or Redis, scores them
// against a query, optionally asks a chat-completion model for an answer, and
// always falls back to local match scores when the model is unavailable.
//
//	client, _ := garden.New(
//	    garden.WithValkey("localhost:6379", ""),
//	    garden.WithPrimaryCompletion(os.Getenv("OPENAI_API_KEY"), "", "gpt-4o-mini"),
//	)
//	defer client.Close()
//
//	resp, _ := client.Search().Query("typescript").Limit(5).Do(ctx)
//	fmt.Println(resp.Answer)
//	for _, r := range resp.Results {
//	    fmt.Println(r.MatchScore, r.Title)
//	}
package garden
