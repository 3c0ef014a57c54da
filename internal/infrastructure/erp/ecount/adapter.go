package ecount

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/erp"
)

// maxResponseSize is the maximum allowed response size from the ECount API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrNotConfigured indicates a tenant without registered ECount credentials
var ErrNotConfigured = errors.New("ecount: tenant has no ECount credentials configured")

// Adapter implements the erp.Sender port against the ECount OpenAPI.
// Every send performs the full Zone -> OAPILogin -> SaveSale sequence;
// sessions are not reused, a retry is always a clean attempt.
type Adapter struct {
	opts        Options
	connections erp.ConnectionRepository
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewAdapter creates a new ECount adapter. Credentials are resolved
// through the connection repository on every send.
func NewAdapter(opts Options, connections erp.ConnectionRepository, logger *zap.Logger) *Adapter {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	return &Adapter{
		opts:        opts,
		connections: connections,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		logger:      logger,
	}
}

func (a *Adapter) getTenantConfig(ctx context.Context, tenantID uuid.UUID) (*Config, error) {
	conn, err := a.connections.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, erp.ErrConnectionNotFound) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}

	cfg := &Config{
		ComCode:       conn.ComCode,
		UserID:        conn.UserID,
		APICertKey:    conn.APICertKey,
		WarehouseCode: conn.WarehouseCode,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Send transmits a sales document as one SaveSale bulk upload and
// returns the ERP-assigned slip number.
func (a *Adapter) Send(ctx context.Context, doc *erp.SalesDocument) (string, error) {
	cfg, err := a.getTenantConfig(ctx, doc.TenantID)
	if err != nil {
		return "", err
	}

	zone, err := a.lookupZone(ctx, cfg)
	if err != nil {
		return "", err
	}

	sessionID, err := a.login(ctx, cfg, zone)
	if err != nil {
		return "", err
	}

	slipNo, err := a.saveSale(ctx, cfg, zone, sessionID, doc)
	if err != nil {
		return "", err
	}

	a.logger.Info("ecount sale saved",
		zap.String("tenant_id", doc.TenantID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("slip_no", slipNo),
	)
	return slipNo, nil
}

// ---------------------------------------------------------------------------
// ECount OpenAPI calls
// ---------------------------------------------------------------------------

type zoneResponse struct {
	Data struct {
		Zone string `json:"ZONE"`
	} `json:"Data"`
}

type loginResponse struct {
	Data struct {
		Datas struct {
			SessionID string `json:"SESSION_ID"`
		} `json:"Datas"`
	} `json:"Data"`
}

type saveSaleResponse struct {
	Data struct {
		SuccessCnt    int      `json:"SuccessCnt"`
		FailCnt       int      `json:"FailCnt"`
		SlipNos       []string `json:"SlipNos"`
		ResultDetails []struct {
			IsSuccess  bool   `json:"IsSuccess"`
			TotalError string `json:"TotalError"`
		} `json:"ResultDetails"`
	} `json:"Data"`
}

func (a *Adapter) lookupZone(ctx context.Context, cfg *Config) (string, error) {
	var resp zoneResponse
	body := map[string]string{"COM_CODE": cfg.ComCode}
	if err := a.postJSON(ctx, a.opts.ZoneURL, body, &resp); err != nil {
		return "", fmt.Errorf("ecount: zone lookup failed: %w", err)
	}
	if resp.Data.Zone == "" {
		return "", errors.New("ecount: zone lookup returned no zone")
	}
	return resp.Data.Zone, nil
}

func (a *Adapter) login(ctx context.Context, cfg *Config, zone string) (string, error) {
	url := a.apiBase(zone) + "/OAPI/V2/OAPILogin"
	body := map[string]string{
		"COM_CODE":     cfg.ComCode,
		"USER_ID":      cfg.UserID,
		"API_CERT_KEY": cfg.APICertKey,
		"LAN_TYPE":     "ko-KR",
		"ZONE":         zone,
	}

	var resp loginResponse
	if err := a.postJSON(ctx, url, body, &resp); err != nil {
		return "", fmt.Errorf("ecount: login failed: %w", err)
	}
	if resp.Data.Datas.SessionID == "" {
		return "", errors.New("ecount: login returned no session")
	}
	return resp.Data.Datas.SessionID, nil
}

func (a *Adapter) saveSale(ctx context.Context, cfg *Config, zone, sessionID string, doc *erp.SalesDocument) (string, error) {
	url := a.apiBase(zone) + "/OAPI/V2/Sale/SaveSale?SESSION_ID=" + sessionID

	saleList := make([]map[string]any, len(doc.Lines))
	for i, line := range doc.Lines {
		saleList[i] = map[string]any{"BulkDatas": a.bulkDatas(cfg, doc, line)}
	}

	var resp saveSaleResponse
	if err := a.postJSON(ctx, url, map[string]any{"SaleList": saleList}, &resp); err != nil {
		return "", fmt.Errorf("ecount: save sale failed: %w", err)
	}
	if resp.Data.FailCnt > 0 {
		return "", fmt.Errorf("ecount: save sale rejected %d of %d lines: %s",
			resp.Data.FailCnt, len(doc.Lines), firstError(resp))
	}
	if len(resp.Data.SlipNos) > 0 {
		return resp.Data.SlipNos[0], nil
	}
	return doc.DocumentDate.Format("20060102"), nil
}

// bulkDatas flattens one document line into the SaveSale bulk schema.
// All lines of the document share IO_DATE and UPLOAD_SER_NO so ECount
// books them as a single slip.
func (a *Adapter) bulkDatas(cfg *Config, doc *erp.SalesDocument, line erp.DocumentLine) map[string]string {
	warehouseCode := line.WarehouseCode
	if warehouseCode == "" {
		warehouseCode = cfg.WarehouseCode
	}

	datas := map[string]string{
		"IO_DATE":       doc.DocumentDate.Format("20060102"),
		"UPLOAD_SER_NO": "1",
		"CUST":          doc.CustomerCode,
		"CUST_DES":      doc.CustomerName,
		"WH_CD":         warehouseCode,
		"PROD_CD":       line.ProductCode,
		"PROD_DES":      line.Description,
		"QTY":           strconv.Itoa(line.Quantity),
		"SUPPLY_AMT":    line.SupplyAmount.String(),
		"VAT_AMT":       line.VATAmount.String(),
	}
	if line.Remarks != "" {
		datas["REMARKS"] = line.Remarks
	}
	for name, value := range line.ExtraFields {
		datas[name] = value
	}
	return datas
}

func (a *Adapter) apiBase(zone string) string {
	if strings.Contains(a.opts.APIBaseFormat, "%s") {
		return fmt.Sprintf(a.opts.APIBaseFormat, zone)
	}
	return a.opts.APIBaseFormat
}

func (a *Adapter) postJSON(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

func firstError(resp saveSaleResponse) string {
	for _, detail := range resp.Data.ResultDetails {
		if !detail.IsSuccess && detail.TotalError != "" {
			return detail.TotalError
		}
	}
	return "unknown error"
}

// Ensure Adapter implements the sender port
var _ erp.Sender = (*Adapter)(nil)
