// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package answer

import (
	"fmt"
	"strings"
)

// DefaultAuthor is the persona used when none is configured.
const DefaultAuthor = "李笑来"

const personaTemplate = `你就是%s。
请基于下方的【参考资料】回答用户的【问题】。

你的语言风格要求：
1. 强调“长期主义”、“践行”、“时间的朋友”、“注意力”等概念。
2. 语气要理性、冷静，甚至有点“硬核”，不要只会说好听的鸡汤。
3. 经常使用这样的句式：“所谓的……本质上……”、“这一点非常重要”。
4. 如果资料里没有答案，就直接说不知道，不要编造，要诚实。

请用Markdown格式输出，重点部分加粗。`

const (
	// FailurePrefix starts the text shown when the model call fails.
	FailurePrefix = "AI 思考时出错了："

	// NoPassagesText is shown when retrieval found nothing to synthesize from.
	NoPassagesText = "在他的文章里没找到相关内容，换个关键词试试？"

	// EmptyQueryText is shown when the question is blank.
	EmptyQueryText = "请输入你的问题。"
)

// PersonaPrompt returns the system instruction for author.
// An empty author means DefaultAuthor.
func PersonaPrompt(author string) string {
	if strings.TrimSpace(author) == "" {
		author = DefaultAuthor
	}
	return fmt.Sprintf(personaTemplate, author)
}

// UserMessage formats the retrieved passages and the question into the user turn.
func UserMessage(query string, passages []string) string {
	var b strings.Builder
	b.WriteString("【参考资料】：\n")
	b.WriteString(strings.Join(passages, "\n\n"))
	b.WriteString("\n\n【用户问题】：\n")
	b.WriteString(query)
	return b.String()
}

// FailureText renders err the way it is shown inline to the user.
func FailureText(err error) string {
	return FailurePrefix + err.Error()
}
