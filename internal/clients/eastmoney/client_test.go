package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/fundnav/internal/clients/transport"
	"github.com/aristath/fundnav/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := transport.NewSession(transport.Config{RequestsPerSecond: 1000}, zerolog.Nop())
	client := NewClient(session, zerolog.Nop())
	client.quoteURL = server.URL + "/api/qt/ulist.np/get"
	client.fundURL = server.URL
	client.archiveURL = server.URL + "/FundArchivesDatas.aspx"
	return client
}

func TestSecID(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"512480", "1.512480"},
		{"560050", "1.560050"},
		{"588000", "1.588000"},
		{"600519", "1.600519"},
		{"688981", "1.688981"},
		{"113050", "1.113050"},
		{"159915", "0.159915"},
		{"300750", "0.300750"},
		{"000858", "0.000858"},
		{"123100", "0.123100"},
		{"00700", "116.00700"},
		{"1.000001", "1.000001"},
		{"0.399001", "0.399001"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, SecID(tt.code))
		})
	}
}

func TestFetchQuotes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1.512480,0.159915,1.000001,0.000001", r.URL.Query().Get("secids"))
		w.Write([]byte(`{"rc":0,"data":{"total":4,"diff":[
			{"f2":1.012,"f3":-1.25,"f12":"512480","f13":1,"f14":"半导体ETF"},
			{"f2":"-","f3":"-","f12":"159915","f13":0,"f14":"创业板ETF"},
			{"f2":3050.12,"f3":0.56,"f12":"000001","f13":1,"f14":"上证指数"},
			{"f2":10.5,"f3":1.1,"f12":"000001","f13":0,"f14":"平安银行"}
		]}}`))
	})

	quotes, err := client.FetchQuotes(context.Background(), []string{"512480", "159915", "1.000001", "000001"})
	require.NoError(t, err)

	require.Contains(t, quotes, "512480")
	assert.InDelta(t, -1.25, quotes["512480"].ChangePercent, 1e-9)
	assert.Equal(t, "半导体ETF", quotes["512480"].Name)

	// "-" is absent, not zero
	assert.NotContains(t, quotes, "159915")

	// Same code on two markets keeps both apart
	assert.InDelta(t, 0.56, quotes["1.000001"].ChangePercent, 1e-9)
	assert.InDelta(t, 1.1, quotes["000001"].ChangePercent, 1e-9)
}

func TestFetchQuotes_NullData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"rc":0,"data":null}`))
	})

	quotes, err := client.FetchQuotes(context.Background(), []string{"999999"})
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestFetchQuotes_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchQuotes(context.Background(), []string{"512480"})
	assert.Error(t, err)
}

func TestFetchNAVHistory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pingzhongdata/161725.js", r.URL.Path)
		w.Write([]byte(`var ishb=false;var fS_name = "招商中证白酒指数(LOF)A";var fS_code = "161725";
var Data_netWorthTrend = [{"x":1705334400000,"y":1.0211,"equityReturn":0.12,"unitMoney":""},{"x":1705420800000,"y":1.0234,"equityReturn":null,"unitMoney":""}];
var Data_ACWorthTrend = [[1705334400000,2.5]];`))
	})

	history, err := client.FetchNAVHistory(context.Background(), "161725")
	require.NoError(t, err)

	assert.Equal(t, "招商中证白酒指数(LOF)A", history.Name)
	require.Len(t, history.Points, 2)
	assert.Equal(t, "2024-01-16", history.Points[0].Date)
	assert.Equal(t, "1.0211", history.Points[0].NAV.String())
	require.NotNil(t, history.Points[0].ChangePercent)
	assert.InDelta(t, 0.12, *history.Points[0].ChangePercent, 1e-9)
	assert.Equal(t, "2024-01-17", history.Points[1].Date)
	assert.Nil(t, history.Points[1].ChangePercent)
}

func TestFetchNAVHistory_MissingTrend(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`var fS_name = "x";`))
	})

	_, err := client.FetchNAVHistory(context.Background(), "000000")
	assert.Error(t, err)
}

const holdingsFixture = `var apidata={ content:"<div class='box'><div class='boxitem w790'><h4 class='t'><label class='left'><a href='http://fund.eastmoney.com/110011.html'>易方达优质精选混合</a>&nbsp;&nbsp;2024年4季度股票投资明细</label><label class='right lab2 xq505'>截止至：<font class='px12'>2024-12-31</font></label></h4><table class='w782 comm tzxq'><thead><tr><th>序号</th><th>股票代码</th><th>股票名称</th><th class='tor'>最新价</th><th class='tor'>涨跌幅</th><th>相关资讯</th><th class='tor'>占净值<br />比例</th><th class='tor'>持股数<br />（万股）</th></tr></thead><tbody><tr><td>1</td><td><a href='#'>00700</a></td><td class='tol'><a href='#'>腾讯控股</a></td><td class='tor'></td><td class='tor'></td><td>变动详情</td><td class='tor'>9.80%</td><td class='tor'>1,020.00</td></tr><tr><td>2</td><td><a href='#'>600519</a></td><td class='tol'><a href='#'>贵州茅台</a></td><td class='tor'></td><td class='tor'></td><td>变动详情</td><td class='tor'>9.95%</td><td class='tor'>80.00</td></tr></tbody></table></div></div><div class='box'><div class='boxitem w790'><h4 class='t'><label class='left'>2024年3季度股票投资明细</label></h4><table class='w782 comm tzxq'><thead><tr><th>序号</th><th>股票代码</th><th>股票名称</th><th>占净值<br />比例</th></tr></thead><tbody><tr><td>1</td><td>000858</td><td>五粮液</td><td>8.00%</td></tr></tbody></table></div></div>",arryear:[2024,2023],curyear:2024};`

func TestFetchHoldings_TakesLatestPeriodOnly(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "jjcc", r.URL.Query().Get("type"))
		assert.Equal(t, "110011", r.URL.Query().Get("code"))
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		w.Write([]byte(holdingsFixture))
	})

	snapshot, err := client.FetchHoldings(context.Background(), "110011", 2024)
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	assert.Equal(t, domain.FundID("110011"), snapshot.FundID)
	assert.Equal(t, "2024年4季度", snapshot.Period)
	require.Len(t, snapshot.Entries, 2)

	// Ordered by weight descending
	assert.Equal(t, "600519", snapshot.Entries[0].InstrumentID)
	assert.Equal(t, "贵州茅台", snapshot.Entries[0].Name)
	assert.InDelta(t, 9.95, snapshot.Entries[0].WeightPercent, 1e-9)
	assert.Equal(t, "00700", snapshot.Entries[1].InstrumentID)
}

func TestFetchHoldings_EmptyYear(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`var apidata={ content:"",arryear:[],curyear:2025};`))
	})

	snapshot, err := client.FetchHoldings(context.Background(), "110011", 2025)
	require.NoError(t, err)
	assert.Nil(t, snapshot)
}

func TestFetchHoldings_CapsAtTen(t *testing.T) {
	var rows strings.Builder
	for i := 0; i < 12; i++ {
		rows.WriteString("<tr><td>1</td><td>6000")
		rows.WriteString(string(rune('1' + i%9)))
		rows.WriteString(string(rune('0' + i/9)))
		rows.WriteString("</td><td>n</td><td>1.00%</td></tr>")
	}
	body := `var apidata={ content:"<table><tr><th>序号</th><th>股票代码</th><th>股票名称</th><th>占净值比例</th></tr>` +
		rows.String() + `</table>",arryear:[2024],curyear:2024};`

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	snapshot, err := client.FetchHoldings(context.Background(), "110011", 2024)
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Len(t, snapshot.Entries, 10)
}

func TestFetchDirectory(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/js/fundcode_search.js", r.URL.Path)
		w.Write([]byte("\uFEFFvar r = [[\"000001\",\"HXCZHH\",\"华夏成长混合\",\"混合型-灵活\",\"HUAXIACHENGZHANGHUNHE\"],[\"161725\",\"ZSZZBJZSLOFA\",\"招商中证白酒指数(LOF)A\",\"指数型-股票\",\"ZHAOSHANG\"]];"))
	})

	funds, err := client.FetchDirectory(context.Background())
	require.NoError(t, err)
	require.Len(t, funds, 2)
	assert.Equal(t, domain.FundInfo{Code: "161725", Name: "招商中证白酒指数(LOF)A", Type: "指数型-股票", Pinyin: "ZSZZBJZSLOFA"}, funds[1])
}
