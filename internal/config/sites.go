package config

// DefaultInputSelectors is the query input priority used when a site does
// not name its own: multi-line text area, editable element, text input.
func DefaultInputSelectors() []string {
	return []string{
		"textarea",
		`[contenteditable="true"]`,
		`input[type="text"]`,
	}
}

// commonDenylist holds the sidebar and composer labels shared by the
// Chinese chat front ends.
func commonDenylist() []string {
	return []string{
		"新对话",
		"开启新对话",
		"云盘",
		"更多",
		"历史对话",
		"快速",
		"帮我写作",
		"编程",
		"深入研究",
		"图像生成",
		"解题答疑",
		"PPT 生成",
		"免费",
		"深度思考",
		"联网搜索",
		"今天",
		"昨天",
		"7 天内",
		"30 天内",
		"下载 App",
		"个人信息",
	}
}

func commonDenyPatterns() []string {
	return []string{
		`^AI 创作`,
		`^抖音`,
		`^参考 \d+ 篇资料$`,
		`^已搜索到 \d+ 个网页$`,
		`^ERROR:`,
	}
}

// BuiltinSites returns the bundled site profiles
func BuiltinSites() map[string]Site {
	return map[string]Site{
		"deepseek": {
			Label:          "DEEPSEEK",
			URLContains:    "chat.deepseek.com",
			StartURL:       "https://chat.deepseek.com/",
			Denylist:       append(commonDenylist(), "DeepSeek", "内容由 AI 生成，请仔细甄别"),
			DenyPatterns:   commonDenyPatterns(),
			InputSelectors: append([]string{"textarea#chat-input"}, DefaultInputSelectors()...),
		},
		"doubao": {
			Label:          "DOUBAO",
			URLContains:    "doubao.com/chat",
			StartURL:       "https://www.doubao.com/chat/",
			Denylist:       append(commonDenylist(), "豆包", "AI 搜索", "AI 编程", "翻译"),
			DenyPatterns:   commonDenyPatterns(),
			InputSelectors: append([]string{`textarea[data-testid="chat_input_input"]`}, DefaultInputSelectors()...),
		},
	}
}
