package dto

// WeekBucketResponse is one point of the missed-chat trend series.
type WeekBucketResponse struct {
	Week  string `json:"week"`
	Chats int    `json:"chats"`
}

// AnalyticsOverviewResponse bundles the dashboard metrics.
type AnalyticsOverviewResponse struct {
	AvgReplyTime       int                  `json:"avgReplyTime"`
	MissedChats        []WeekBucketResponse `json:"missedChats"`
	ResolvedPercentage int                  `json:"resolvedPercentage"`
	TotalChats         int                  `json:"totalChats"`
}
