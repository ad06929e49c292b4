package pulse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mengeric/cryptopulse-go/storage/memstore"
)

// startTestServer 在随机端口拉起一个注入假行情源与内存存储的服务。
func startTestServer(t *testing.T, api *fakeAPI) (*Server, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(
		WithListenAddr("127.0.0.1:0"),
		WithPriceAPI(api),
		WithStore(memstore.New()),
	)
	s.Start(ctx)
	if s.Addr() == "" {
		cancel()
		t.Fatal("server did not start")
	}
	return s, cancel
}

func doReq(method, url string) (int, map[string]any, error) {
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return 0, nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}

func TestServer_IngestAndDataLast(t *testing.T) {
	Convey("POST /ingest persists one reading and /data/last returns it", t, func() {
		api := &fakeAPI{}
		s, stop := startTestServer(t, api)
		defer stop()
		base := "http://" + s.Addr()

		code, body, err := doReq(http.MethodPost, base+"/ingest")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "ok")
		So(body["ts_utc"], ShouldNotBeEmpty)
		So(body["price_usd"], ShouldEqual, 50001.0)

		// GET 也接受（只读端点不限方法）
		code, body, err = doReq(http.MethodGet, base+"/data/last?n=10")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["count"], ShouldEqual, 1)

		// 上游故障透传为 502
		api.mu.Lock()
		api.failOn = map[int]bool{2: true}
		api.mu.Unlock()
		code, body, err = doReq(http.MethodPost, base+"/ingest")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusBadGateway)
		So(body["status"], ShouldEqual, "error")
		So(body["error"], ShouldContainSubstring, "upstream boom")

		// /ingest 仅 POST
		code, _, err = doReq(http.MethodGet, base+"/ingest")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusMethodNotAllowed)
	})
}

func TestServer_IngestBatchValidation(t *testing.T) {
	Convey("out-of-range batch params are rejected at the HTTP boundary", t, func() {
		s, stop := startTestServer(t, &fakeAPI{})
		defer stop()
		base := "http://" + s.Addr()

		cases := []string{
			"count=0", "count=2001", "count=abc",
			"delay=0.5", "delay=600.5", "delay=xyz",
		}
		for _, qs := range cases {
			code, body, err := doReq(http.MethodPost, base+"/ingest_batch?"+qs)
			So(err, ShouldBeNil)
			So(code, ShouldEqual, http.StatusBadRequest)
			So(body["status"], ShouldEqual, "error")
		}

		// 校验失败不得留下任何运行痕迹
		code, body, err := doReq(http.MethodGet, base+"/batch/status")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["running"], ShouldEqual, false)
		So(body["target"], ShouldEqual, 0)
	})
}

func TestServer_BatchLifecycle(t *testing.T) {
	Convey("start / status / stop / reset over HTTP", t, func() {
		s, stop := startTestServer(t, &fakeAPI{perCall: 50 * time.Millisecond})
		defer stop()
		base := "http://" + s.Addr()

		code, body, err := doReq(http.MethodPost, base+"/ingest_batch?count=30&delay=1.0")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "started")
		So(body["target"], ShouldEqual, 30)
		So(body["run_id"], ShouldNotBeEmpty)

		// 重复 start 幂等返回 already_running
		code, body, err = doReq(http.MethodPost, base+"/ingest_batch?count=5&delay=2.0")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "already_running")
		So(body["target"], ShouldEqual, 30) // 快照仍是进行中的批次

		code, body, err = doReq(http.MethodGet, base+"/batch/status")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "ok")
		So(body["eta_seconds"], ShouldNotBeNil)

		code, body, err = doReq(http.MethodPost, base+"/batch/stop")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "stopping")
		So(body["running"], ShouldEqual, false)

		So(waitDrained(s.Batch(), 2*time.Second), ShouldBeTrue)

		code, body, err = doReq(http.MethodPost, base+"/batch/reset")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "reset")
		So(body["done"], ShouldEqual, 0)
		So(body["run_id"], ShouldBeNil)

		// 复位后可再次启动
		code, body, err = doReq(http.MethodPost, base+"/ingest_batch?count=2&delay=1.0")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "started")
	})
}

func TestServer_TrainPredictHealth(t *testing.T) {
	Convey("train/predict report data shortage, health reports vitals", t, func() {
		s, stop := startTestServer(t, &fakeAPI{})
		defer stop()
		base := "http://" + s.Addr()

		code, body, err := doReq(http.MethodPost, base+"/train")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "not_enough_data")
		So(body["min_required"], ShouldEqual, 120)

		code, body, err = doReq(http.MethodGet, base+"/predict")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "no_model")

		code, body, err = doReq(http.MethodGet, base+"/health")
		So(err, ShouldBeNil)
		So(code, ShouldEqual, http.StatusOK)
		So(body["status"], ShouldEqual, "ok")
		So(body["db"], ShouldEqual, "ok")
		So(body["rows"], ShouldEqual, 0)
		So(body["system"], ShouldNotBeNil)
		sys, ok := body["system"].(map[string]any)
		So(ok, ShouldBeTrue)
		So(fmt.Sprintf("%v", sys["score"]), ShouldNotBeEmpty)
	})
}

func TestServer_UnknownSource(t *testing.T) {
	Convey("an unknown source name leaves the server unstarted", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s := NewServer(WithListenAddr("127.0.0.1:0"), WithSource("nope", "bitcoin", "usd"))
		s.Start(ctx)
		So(s.Addr(), ShouldEqual, "")
	})
}
