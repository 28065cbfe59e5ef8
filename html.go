// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package notebookmd

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

var (
	reScript = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script>`)
	reStyle  = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style>`)
)

// convertHTMLToMarkdown renders an HTML output (DataFrame tables, rich reprs)
// as Markdown. Scripts and styles are dropped first since widgets and
// stylesheets have no Markdown form.
func convertHTMLToMarkdown(htmlStr string) (string, error) {
	htmlStr = reScript.ReplaceAllString(htmlStr, "")
	htmlStr = reStyle.ReplaceAllString(htmlStr, "")

	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)

	md, err := conv.ConvertString(htmlStr)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(md), nil
}
