package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Output   OutputConfig   `yaml:"output"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Signals  SignalsConfig  `yaml:"signals"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Brand    BrandProfile   `yaml:"brand"`
	Noise    NoiseLists     `yaml:"noise"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig configures SQLite storage.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig configures where batch tables are written.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// FeedsConfig configures RSS ingestion.
type FeedsConfig struct {
	Window       string     `yaml:"window"` // how far back to accept items
	Feeds        []FeedItem `yaml:"list"`
	SkipPatterns []string   `yaml:"skip_patterns"` // regexes matched against lowercased titles
	SkipKeywords []string   `yaml:"skip_keywords"`
}

// FeedItem is a single RSS feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ParseWindow returns the scan window as a time.Duration.
func (f FeedsConfig) ParseWindow() time.Duration {
	d, err := time.ParseDuration(f.Window)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// SignalsConfig configures the external signal fetchers.
type SignalsConfig struct {
	Engagement EngagementConfig `yaml:"engagement"`
	Trends     TrendsConfig     `yaml:"trends"`
	Mock       bool             `yaml:"mock"`
	Workers    int              `yaml:"workers"`
	RatePerSec float64          `yaml:"rate_per_sec"`
	Timeout    string           `yaml:"timeout"`
	Sentiment  SentimentLexicon `yaml:"sentiment"`
}

// ParseTimeout returns the per-fetch timeout.
func (s SignalsConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EngagementConfig for the social engagement backend.
type EngagementConfig struct {
	Enabled    bool   `yaml:"enabled"`
	BaseURL    string `yaml:"base_url"`
	Language   string `yaml:"language"`
	SampleSize int    `yaml:"sample_size"`
}

// TrendsConfig for the search-interest backend.
type TrendsConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Geo     string `yaml:"geo"`
}

// SentimentLexicon holds polarity word lists for the lexical scorer.
type SentimentLexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// Weights are the composite score weights. They must sum to ~1.0.
type Weights struct {
	Freshness      float64 `yaml:"freshness"`
	Authority      float64 `yaml:"authority"`
	SocialVelocity float64 `yaml:"social_velocity"`
	Engagement     float64 `yaml:"engagement"`
	BrandFit       float64 `yaml:"brand_fit"`
	Novelty        float64 `yaml:"novelty"`
	Sentiment      float64 `yaml:"sentiment"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Freshness + w.Authority + w.SocialVelocity + w.Engagement +
		w.BrandFit + w.Novelty + w.Sentiment
}

// ScoringConfig holds the scorer tunables.
type ScoringConfig struct {
	TauHours        float64            `yaml:"tau_hours"`
	PostCutoff      float64            `yaml:"post_cutoff"`
	WatchCutoff     float64            `yaml:"watch_cutoff"`
	RiskPenalty     float64            `yaml:"risk_penalty"`
	NoveltyCapacity int                `yaml:"novelty_capacity"`
	Weights         Weights            `yaml:"weights"`
	Authority       map[string]float64 `yaml:"authority"`
	AuthorityFloor  float64            `yaml:"authority_floor"`
	Topics          []string           `yaml:"topics"`
	NoBrandFit      bool               `yaml:"no_brand_fit"`
}

// BrandCategory is one weighted keyword category of the brand profile.
type BrandCategory struct {
	Weight   float64  `yaml:"weight"`
	Keywords []string `yaml:"keywords"`
}

// BrandProfile measures editorial fit against weighted keyword categories.
type BrandProfile struct {
	Categories map[string]BrandCategory `yaml:"categories"`
	Negative   []string                 `yaml:"negative"`
}

// NoiseLists hold the low-quality-content keyword tables.
type NoiseLists struct {
	Crime       []string            `yaml:"crime"`
	Accident    []string            `yaml:"accident"`
	Tabloid     []string            `yaml:"tabloid"`
	LocalHints  []string            `yaml:"local_hints"`
	LowSections map[string][]string `yaml:"low_sections"` // domain -> URL path prefixes
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./newsradar.db"},
		Output:   OutputConfig{Dir: "./out"},
		Log:      LogConfig{Level: "info"},
		Feeds: FeedsConfig{
			Window: "6h",
			Feeds: []FeedItem{
				{Name: "Valor", URL: "https://valor.globo.com/rss/"},
				{Name: "InfoMoney", URL: "https://www.infomoney.com.br/ultimas-noticias/feed/"},
				{Name: "G1", URL: "https://g1.globo.com/dynamo/rss2.xml"},
				{Name: "BBC Brasil", URL: "https://feeds.bbci.co.uk/portuguese/rss.xml"},
				{Name: "UOL", URL: "https://rss.uol.com.br/feed/noticias.xml"},
				{Name: "WSJ Markets", URL: "https://feeds.a.dj.com/rss/RSSMarketsMain.xml"},
				{Name: "Reuters Business", URL: "http://feeds.reuters.com/reuters/businessNews"},
				{Name: "CNBC Finance", URL: "https://www.cnbc.com/id/100003114/device/rss/rss.html"},
			},
			SkipPatterns: []string{
				`^vídeos?:`, `^videos?:`, `^\s*jornal\s`, `^\s*bom dia\s`, `^\s*eptv\s`,
				`^\s*jl1\s`, `^\s*df1\s`, `^\s*jl2\s`, `^\s*jornal anhanguera`,
			},
			SkipKeywords: []string{
				"vídeos:", "videos:", "ao vivo", "edição", "1ª edição", "2ª edição",
				"programa", "telejornal", "coletânea", "resumo do dia", "agenda cultural",
			},
		},
		Signals: SignalsConfig{
			Workers:    4,
			RatePerSec: 2,
			Timeout:    "30s",
			Engagement: EngagementConfig{Language: "pt", SampleSize: 120},
			Trends:     TrendsConfig{Geo: "BR"},
			Sentiment: SentimentLexicon{
				Positive: []string{
					"alta", "avanço", "cresce", "crescimento", "ganho", "lucro", "recorde",
					"sobe", "supera", "valorização", "otimista", "melhora", "aprovado",
					"gain", "growth", "profit", "record", "rally", "surge", "upbeat",
				},
				Negative: []string{
					"queda", "cai", "despenca", "perda", "prejuízo", "crise", "tombo",
					"recuo", "pessimista", "piora", "calote", "inadimplência", "fraude",
					"loss", "slump", "crash", "downturn", "default", "scandal", "plunge",
				},
			},
		},
		Scoring: ScoringConfig{
			TauHours:        6,
			PostCutoff:      70,
			WatchCutoff:     50,
			RiskPenalty:     0.85,
			NoveltyCapacity: 5000,
			Weights: Weights{
				Freshness:      0.20,
				Authority:      0.15,
				SocialVelocity: 0.20,
				Engagement:     0.10,
				BrandFit:       0.15,
				Novelty:        0.10,
				Sentiment:      0.10,
			},
			Authority: map[string]float64{
				"valor":     0.95,
				"infomoney": 0.90,
				"reuters":   0.98,
				"bloomberg": 0.98,
				"wsj":       0.90,
				"cnbc":      0.88,
			},
			AuthorityFloor: 0.6,
			Topics: []string{
				"selic", "ipca", "juros", "inflação", "inflacao", "câmbio", "cambio",
				"dólar", "dolar", "fed", "copom", "cvm", "sec", "balanço", "balanco",
				"guidance", "dividendos", "resultado", "pib", "gdp", "payroll",
				"petrobras", "vale", "itau", "ambev", "magalu", "b3", "ibovespa",
				"nasdaq", "s&p500", "opec",
			},
		},
		Brand: BrandProfile{
			Categories: map[string]BrandCategory{
				"planejamento_patrimonial": {
					Weight: 1.0,
					Keywords: []string{
						"planejamento patrimonial", "gestão patrimonial", "proteção patrimonial",
						"governança familiar", "holding familiar", "sucessão", "herança",
						"testamento", "trust", "offshore", "estate planning", "wealth planning",
						"asset protection", "family governance",
					},
				},
				"preservacao_risco": {
					Weight: 0.9,
					Keywords: []string{
						"preservação de patrimônio", "diversificação", "alocação",
						"gestão de risco", "hedge", "seguro patrimonial", "volatilidade", "proteção",
					},
				},
				"sucessao_legado": {
					Weight: 0.9,
					Keywords: []string{
						"planejamento sucessório", "legado", "educação financeira",
						"transição geracional", "family office", "fundos exclusivos", "fip", "fii",
					},
				},
				"fiscal_estrutural": {
					Weight: 0.75,
					Keywords: []string{
						"tributação", "impostos", "reforma tributária", "itcmd", "estruturação",
						"custo fiscal", "eficiência fiscal", "tax planning",
					},
				},
				"mercado_relevante": {
					Weight: 0.65,
					Keywords: []string{
						"selic", "copom", "ipca", "juros", "inflação", "câmbio", "dólar",
						"fed", "ecb", "treasury", "s&p 500", "nasdaq", "volatilidade",
						"recessão", "crescimento", "guidance", "resultado", "dividendos",
					},
				},
				"impacto_filantropia": {
					Weight: 0.6,
					Keywords: []string{
						"filantropia", "impacto social", "investimento sustentável",
						"esg", "projetos sociais", "endowment",
					},
				},
			},
			Negative: []string{
				"fofoca", "celebridade", "escândalo", "clickbait", "tabloide", "viral inútil",
			},
		},
		Noise: NoiseLists{
			Crime: []string{
				"assassinato", "homicídio", "homicidio", "feminicídio", "feminicidio",
				"tiroteio", "execução", "executado", "estupro", "latrocínio", "latrocinio",
				"tráfico", "trafico", "facada", "bala perdida", "agrediu", "agressão",
				"agressao", "morto a tiros", "morre após", "corpo é encontrado",
			},
			Accident: []string{
				"acidente", "colisão", "colisao", "capotagem", "batida", "engavetamento",
				"cai de", "queda de", "desabamento", "incêndio", "incendio",
			},
			Tabloid: []string{
				"celebridade", "fofoca", "viralizou", "influencer", "reality", "bbb",
			},
			LocalHints: []string{
				"vídeos:", "videos:", "jornal", "edição", "1ª edição", "2ª edição",
				"bom dia", "eptv", "jl1", "jl2", "df1",
			},
			LowSections: map[string][]string{
				"g1.globo.com": {
					"/acre/", "/al/", "/am/", "/ap/", "/ba/", "/ce/", "/df/", "/es/",
					"/go/", "/ma/", "/mg/", "/ms/", "/mt/", "/pa/", "/pb/", "/pe/",
					"/pi/", "/pr/", "/rj/", "/rn/", "/ro/", "/rr/", "/rs/", "/sc/",
					"/se/", "/sp/",
				},
				"uol.com.br":       {"/cotidiano/", "/policia/", "/carros/", "/entretenimento/"},
				"folha.uol.com.br": {"/cotidiano/", "/esporte/"},
			},
		},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on operator errors that must never reach a batch run.
func (c *Config) Validate() error {
	if sum := c.Scoring.Weights.Sum(); math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("score weights sum to %.4f, want 1.0", sum)
	}
	if c.Scoring.TauHours <= 0 {
		return fmt.Errorf("tau_hours must be > 0, got %.2f", c.Scoring.TauHours)
	}
	if c.Scoring.WatchCutoff > c.Scoring.PostCutoff {
		return fmt.Errorf("watch_cutoff %.1f exceeds post_cutoff %.1f",
			c.Scoring.WatchCutoff, c.Scoring.PostCutoff)
	}
	if c.Scoring.RiskPenalty <= 0 || c.Scoring.RiskPenalty > 1 {
		return fmt.Errorf("risk_penalty must be in (0,1], got %.2f", c.Scoring.RiskPenalty)
	}
	if c.Scoring.NoveltyCapacity <= 0 {
		return fmt.Errorf("novelty_capacity must be > 0, got %d", c.Scoring.NoveltyCapacity)
	}
	if c.Signals.Workers <= 0 {
		return fmt.Errorf("signal workers must be > 0, got %d", c.Signals.Workers)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEWSRADAR_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("NEWSRADAR_OUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("NEWSRADAR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("NEWSRADAR_ENGAGEMENT_URL"); v != "" {
		cfg.Signals.Engagement.BaseURL = v
		cfg.Signals.Engagement.Enabled = true
	}
	if v := os.Getenv("NEWSRADAR_TRENDS_URL"); v != "" {
		cfg.Signals.Trends.BaseURL = v
		cfg.Signals.Trends.Enabled = true
	}
}
