package mcp

import "github.com/mark3labs/mcp-go/mcp"

// listDocumentsTool defines the list_documents MCP tool.
var listDocumentsTool = mcp.NewTool("list_documents",
	mcp.WithDescription("List the uploaded documents available for search, with their IDs, page counts and status."),
)

// searchDocumentTool defines the search_document MCP tool.
var searchDocumentTool = mcp.NewTool("search_document",
	mcp.WithDescription("Search a document semantically for passages relevant to a query. Returns the matching passages with their page numbers."),
	mcp.WithString("doc_id",
		mcp.Required(),
		mcp.Description("ID of the document to search"),
	),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithString("pages",
		mcp.Description("Comma-separated page numbers to restrict the search to"),
	),
)

// summaryMaterialTool defines the get_summary_material MCP tool.
var summaryMaterialTool = mcp.NewTool("get_summary_material",
	mcp.WithDescription("Retrieve a document's broad key content together with summarization instructions, ready for a model to turn into a summary."),
	mcp.WithString("doc_id",
		mcp.Required(),
		mcp.Description("ID of the document to summarize"),
	),
	mcp.WithString("detail_level",
		mcp.Description("How detailed the summary should be (default medium)"),
		mcp.Enum("brief", "medium", "detailed"),
	),
)

// quizMaterialTool defines the get_quiz_material MCP tool.
var quizMaterialTool = mcp.NewTool("get_quiz_material",
	mcp.WithDescription("Retrieve a document's key content together with quiz-writing instructions, ready for a model to turn into quiz questions."),
	mcp.WithString("doc_id",
		mcp.Required(),
		mcp.Description("ID of the document to quiz on"),
	),
	mcp.WithNumber("num_questions",
		mcp.Description("Number of questions to generate (1 to 10, default 5)"),
	),
	mcp.WithString("difficulty",
		mcp.Description("Question difficulty (default medium)"),
		mcp.Enum("easy", "medium", "hard"),
	),
)
