package pulse

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mengeric/cryptopulse-go/client"
	"github.com/mengeric/cryptopulse-go/logging"
	"github.com/mengeric/cryptopulse-go/metrics"
	"github.com/mengeric/cryptopulse-go/model"
	"github.com/mengeric/cryptopulse-go/scheduler"
	"github.com/mengeric/cryptopulse-go/storage"
	"github.com/mengeric/cryptopulse-go/storage/memstore"
)

// 批量采集入参边界（HTTP 层校验，控制器假定入参已合法）。
const (
	batchCountMin = 1
	batchCountMax = 2000
	batchDelayMin = 1.0
	batchDelayMax = 600.0
)

// Server 服务主对象：提供内置 HTTP Server 与后台采集/训练生命周期控制。
// 说明：Start(ctx) 内自动启动 HTTP Server（监听 Options.ListenAddr），
// 并按配置开启连续采样与周期重训任务；ctx.Done 时优雅关闭。
type Server struct {
	opt   Options
	api   client.PriceAPI
	store storage.Storage

	ing   *Ingestor
	batch *BatchRunner
	samp  *scheduler.Sampler
	trn   *scheduler.Trainer

	srv       *http.Server
	baseCtx   context.Context
	startedAt time.Time
	addrMu    sync.RWMutex
	addr      string
}

// NewServer 创建 Server。
// 功能：按照 With... 可选项组合出一个可运行的服务；若未显式注入存储，默认使用内存存储；
// 若未注入行情源，按 Options.Source 名称从注册表构造。
// 异常：构造阶段不返回错误，行情源名称非法会在 Start 时记录日志并退出。
func NewServer(opts ...Option) *Server {
	cfg := &serverConfig{}
	for _, fn := range opts {
		fn(cfg)
	}
	cfg.opt.withDefaults()
	s := &Server{opt: cfg.opt, api: cfg.api, store: cfg.store}
	if s.store == nil {
		s.store = memstore.New()
	}
	if s.api == nil {
		api, err := client.New(cfg.opt.Source, cfg.opt.Coin, cfg.opt.Currency)
		if err == nil {
			s.api = api
		}
	}
	s.ing = NewIngestor(s.api, s.store)
	s.batch = NewBatchRunner(s.ing)
	return s
}

// Start 启动服务。
// 功能：
// 1) 启动内置 HTTP Server 并确定实际监听地址（支持 :0 随机端口）；
// 2) 按配置开启连续采样与周期重训后台任务；
// 生命周期：受传入 ctx 控制，ctx.Done 时优雅关闭 HTTP Server 并停止后台协程。
func (s *Server) Start(ctx context.Context) {
	if s.api == nil {
		logging.L().Errorf(ctx, "unknown price source %q (have %v)", s.opt.Source, client.Names())
		return
	}
	s.baseCtx = ctx
	s.startedAt = time.Now()

	mux := http.NewServeMux()
	s.registerHandlers(mux)
	ln, err := net.Listen("tcp", s.opt.ListenAddr)
	if err != nil {
		logging.L().Errorf(ctx, "listen failed: addr=%s err=%v", s.opt.ListenAddr, err)
		return
	}
	s.addrMu.Lock()
	s.addr = ln.Addr().String()
	s.addrMu.Unlock()
	s.srv = &http.Server{Addr: s.addr, Handler: mux}
	go func() { <-ctx.Done(); _ = s.srv.Shutdown(context.Background()) }()
	go func() { _ = s.srv.Serve(ln) }()
	logging.L().Infof(ctx, "cryptopulse listening on %s (source=%s)", s.addr, s.opt.Source)

	if s.opt.SampleEvery > 0 {
		s.samp = scheduler.NewSampler(s.ing, s.opt.SampleEvery)
		s.samp.Start(ctx)
	}
	if s.opt.TrainEvery > 0 {
		s.trn = scheduler.NewTrainer(func(c context.Context) (string, error) {
			rep, err := model.Train(c, s.store, s.opt.Horizon, s.opt.MinTrainRows)
			return rep.Status, err
		}, s.opt.TrainEvery)
		s.trn.Start(ctx)
	}
}

// registerHandlers 挂载 HTTP 路由。
func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/ingest_batch", s.handleIngestBatch)
	mux.HandleFunc("/batch/status", s.handleBatchStatus)
	mux.HandleFunc("/batch/stop", s.handleBatchStop)
	mux.HandleFunc("/batch/reset", s.handleBatchReset)
	mux.HandleFunc("/data/last", s.handleDataLast)
	mux.HandleFunc("/train", s.handleTrain)
	mux.HandleFunc("/predict", s.handlePredict)
	mux.HandleFunc("/health", s.handleHealth)
}

// handleIngest 同步采集一次。上游取价失败返回 502。
func (s *Server) handleIngest(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(rw, http.StatusMethodNotAllowed, "POST only")
		return
	}
	p, err := s.ing.CollectOnce(r.Context())
	if err != nil {
		writeErr(rw, http.StatusBadGateway, err)
		return
	}
	writeJSON(rw, map[string]any{"status": "ok", "ts_utc": p.TsUTC, "price_usd": p.PriceUSD})
}

// handleIngestBatch 启动服务端批量采集。
// 入参：count（1..2000，默认 60）、delay 秒（1.0..600.0，默认 12）；越界返回 400。
func (s *Server) handleIngestBatch(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(rw, http.StatusMethodNotAllowed, "POST only")
		return
	}
	q := r.URL.Query()
	count := 60
	if v := q.Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeErrMsg(rw, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = n
	}
	if count < batchCountMin || count > batchCountMax {
		writeErrMsg(rw, http.StatusBadRequest, "count out of range (1..2000)")
		return
	}
	delay := 12.0
	if v := q.Get("delay"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeErrMsg(rw, http.StatusBadRequest, "delay must be a number")
			return
		}
		delay = d
	}
	if delay < batchDelayMin || delay > batchDelayMax {
		writeErrMsg(rw, http.StatusBadRequest, "delay out of range (1.0..600.0)")
		return
	}
	// 后台循环挂到服务生命周期上下文，与本次请求解耦
	writeJSON(rw, s.batch.Start(s.baseCtx, count, delay))
}

// handleBatchStatus 查询批次状态（含 ETA）。
func (s *Server) handleBatchStatus(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, s.batch.Status())
}

// handleBatchStop 请求优雅停止。
func (s *Server) handleBatchStop(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(rw, http.StatusMethodNotAllowed, "POST only")
		return
	}
	writeJSON(rw, s.batch.Stop())
}

// handleBatchReset 复位批次状态（测试用）。
func (s *Server) handleBatchReset(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(rw, http.StatusMethodNotAllowed, "POST only")
		return
	}
	writeJSON(rw, s.batch.Reset())
}

// handleDataLast 返回最近 n 条读数（升序），n 默认 300，上限 2000。
func (s *Server) handleDataLast(rw http.ResponseWriter, r *http.Request) {
	n := 300
	if v := r.URL.Query().Get("n"); v != "" {
		x, err := strconv.Atoi(v)
		if err != nil || x < 1 {
			writeErrMsg(rw, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = x
	}
	if n > 2000 {
		n = 2000
	}
	recs, err := s.store.LastPrices(r.Context(), n)
	if err != nil {
		writeErr(rw, http.StatusInternalServerError, err)
		return
	}
	writeJSON(rw, map[string]any{"status": "ok", "count": len(recs), "data": recs})
}

// handleTrain 训练模型并返回报告（数据不足等非异常状态也以 200 返回）。
func (s *Server) handleTrain(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrMsg(rw, http.StatusMethodNotAllowed, "POST only")
		return
	}
	rep, err := model.Train(r.Context(), s.store, s.opt.Horizon, s.opt.MinTrainRows)
	if err != nil {
		writeErr(rw, http.StatusInternalServerError, err)
		return
	}
	writeJSON(rw, rep)
}

// handlePredict 用已保存模型预测下一方向。
func (s *Server) handlePredict(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, model.PredictNow(r.Context(), s.store))
}

// handleHealth 健康检查：运行时长、数据规模、DB 可达性与系统指标。
func (s *Server) handleHealth(rw http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	rows, err := s.store.CountPrices(r.Context())
	if err != nil {
		dbStatus = "error: " + err.Error()
	}
	writeJSON(rw, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"rows":           rows,
		"db":             dbStatus,
		"system":         metrics.CollectSystemMetric(r.Context()),
	})
}

// writeErr/JSON 公共返回工具。
func writeErr(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": err.Error()})
}

func writeErrMsg(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": "error", "error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Addr 返回内置 HTTP Server 的实际监听地址（用于测试或 :0 随机端口场景）。
func (s *Server) Addr() string { s.addrMu.RLock(); defer s.addrMu.RUnlock(); return s.addr }

// Batch 暴露批次控制器（测试与宿主扩展用）。
func (s *Server) Batch() *BatchRunner { return s.batch }
