package notify

const briefingHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.B.Company}} ({{.B.Ticker}}) Briefing</title>
  <style>
    body {
      margin: 0;
      padding: 24px;
      background-color: #f3f4f6;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      color: #111827;
      line-height: 1.5;
    }
    .container {
      max-width: 640px;
      margin: 0 auto;
      background: #ffffff;
      border-radius: 8px;
      border: 1px solid #e5e7eb;
      overflow: hidden;
    }
    .header {
      padding: 20px 24px;
      background: #1f2937;
      color: #ffffff;
    }
    .ticker {
      font-size: 24px;
      font-weight: 700;
    }
    .section {
      padding: 16px 24px;
      border-top: 1px solid #e5e7eb;
    }
    .section h2 {
      font-size: 13px;
      text-transform: uppercase;
      color: #6b7280;
      margin: 0 0 8px 0;
    }
    table.metrics td {
      padding: 2px 12px 2px 0;
    }
    .footer {
      padding: 12px 24px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <div class="ticker">{{.B.Ticker}}</div>
      <div>{{.B.Company}} Company Briefing</div>
    </div>

    <div class="section">
      <h2>Stock Performance</h2>
      <table class="metrics">
        <tr><td>Current Price</td><td>{{dollars .B.Performance.Price}}</td></tr>
        <tr><td>Change</td><td>{{dollars .B.Performance.Change}} ({{.B.Performance.ChangePercent}})</td></tr>
        <tr><td>Day Range</td><td>{{dollars .B.Performance.Low}} to {{dollars .B.Performance.High}} ({{pct .B.Performance.DayRangePercent}})</td></tr>
        <tr><td>Volume</td><td>{{printf "%.1f" .B.Performance.VolumeMillions}}M</td></tr>
        <tr><td>Trading Day</td><td>{{.B.Performance.LatestTradingDay}}</td></tr>
      </table>
    </div>

    <div class="section">
      <h2>Recent News</h2>
      {{if .B.News}}
      <ol>
        {{range .B.News}}<li><a href="{{.URL}}">{{.Title}}</a> <span>{{.Source}}</span></li>
        {{end}}
      </ol>
      {{else}}
      <p><em>No recent news articles found.</em></p>
      {{end}}
    </div>

    <div class="section">
      <h2>Analysis</h2>
      <p>{{.Analysis}}</p>
    </div>

    <div class="footer">Sources: {{.Sources}}</div>
  </div>
</body>
</html>
`
