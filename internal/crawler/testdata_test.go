package crawler

import (
	"fmt"
	"strings"
	"time"

	"sjsage522/contestharvester/config"
	"sjsage522/contestharvester/helpers"
)

// contestKoreaItem renders one listing the way the list page marks it up.
func contestKoreaItem(n int) string {
	return fmt.Sprintf(`
		<li>
			<div class="title">
				<a href="view.php?int_gbn=1&str_no=%d">
					<span class="category">공모전</span>
					<span class="txt">Contest %d</span>
				</a>
			</div>
			<ul class="host">
				<li class="icon_1"><strong>주최.</strong> Organizer %d</li>
				<li class="icon_2"><strong>대상.</strong> 대학생
					일반인</li>
			</ul>
			<div class="date">
				<span class="step-1"><em>접수</em>2024.01.01 ~ 2024.02.01</span>
				<span class="step-2"><em>심사</em>2024.02.10</span>
			</div>
			<div class="d-day"><span class="day">D-%d</span></div>
		</li>`, n, n, n, n)
}

func contestKoreaPage(items ...string) string {
	return `<html><body>
		<div class="list_style_2"><ul>` + strings.Join(items, "") + `</ul></div>
	</body></html>`
}

func icsCard(title, href, ages, categories string) string {
	return fmt.Sprintf(`
		<div class="middle-wrapper">
			<h3><a href="%s">%s</a></h3>
			<p class="ages">Ages: <span>%s</span></p>
			<p class="categories">Categories: <span>%s</span></p>
		</div>`, href, title, ages, categories)
}

func icsPage(next string, cards ...string) string {
	nav := ""
	if next != "" {
		nav = fmt.Sprintf(`<div class="nav-links"><span class="page-numbers current">1</span><a class="next page-numbers" href="%s">Next</a></div>`, next)
	}
	return `<html><body><main>` + strings.Join(cards, "") + `</main>` + nav + `</body></html>`
}

// testConfig points both sources at a test server and removes the page delay.
func testConfig(serverURL string) *config.Config {
	cfg := config.LoadConfig()
	cfg.ContestKoreaURL = serverURL + "/sub/list.php"
	cfg.ContestKoreaBaseURL = serverURL
	cfg.ICSURL = serverURL + "/competitions/"
	cfg.ICSBaseURL = serverURL
	cfg.PageDelay = 0
	return cfg
}

func testFetcher() PageFetcher {
	return helpers.NewPageFetcher(2 * time.Second)
}
