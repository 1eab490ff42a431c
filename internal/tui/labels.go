package tui

type labels struct {
	AppName     string
	MainTab     string
	QuestionTab string
	Ask         string
	Back        string
	Placeholder string
	Thinking    string
	From        string
	To          string
	You         string
	Assistant   string
	Loading     string
	NoRecords   string
	ListFailed  string
	ChatFailed  string
	InvalidDate string
	Busy        string
	EmptyChat   string
}

var labelSets = map[string]labels{
	"en": {
		AppName:     "Agromind",
		MainTab:     "Dashboard",
		QuestionTab: "Ask",
		Ask:         "Ask Agromind",
		Back:        "Back",
		Placeholder: "Type your question",
		Thinking:    "thinking…",
		From:        "From: ",
		To:          "To: ",
		You:         "You",
		Assistant:   "Agromind",
		Loading:     "Loading…",
		NoRecords:   "No records for this range.",
		ListFailed:  "Could not load records",
		ChatFailed:  "Request failed",
		InvalidDate: "Dates must be YYYY-MM-DD",
		Busy:        "Waiting for the previous answer",
		EmptyChat:   "Ask a question about your field.",
	},
	"zh": {
		AppName:     "Agromind",
		MainTab:     "概览",
		QuestionTab: "提问",
		Ask:         "向Agromind提问",
		Back:        "返回",
		Placeholder: "请输入您的问题",
		Thinking:    "思考中…",
		From:        "开始: ",
		To:          "结束: ",
		You:         "用户",
		Assistant:   "Agromind",
		Loading:     "加载中…",
		NoRecords:   "该日期范围内没有记录。",
		ListFailed:  "请求出错",
		ChatFailed:  "请求出错",
		InvalidDate: "日期格式应为 YYYY-MM-DD",
		Busy:        "请等待上一个回答",
		EmptyChat:   "请输入关于您农田的问题。",
	},
}

func labelsFor(lang string) labels {
	if l, ok := labelSets[lang]; ok {
		return l
	}
	return labelSets["en"]
}
