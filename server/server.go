package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Iamabhih/ikhaya-checkout/config"
	"github.com/Iamabhih/ikhaya-checkout/payfast"
	"github.com/Iamabhih/ikhaya-checkout/service/order"
	"github.com/Iamabhih/ikhaya-checkout/service/paymentlog"
	"github.com/Iamabhih/ikhaya-checkout/service/pending"
)

type Server struct {
	conf    config.Config
	gateway *payfast.Client
	pending pending.IService
	orders  order.IService
	logs    paymentlog.IService
}

func New(
	conf config.Config,
	gateway *payfast.Client,
	pendingSvc pending.IService,
	orderSvc order.IService,
	logs paymentlog.IService,
) *Server {
	return &Server{
		conf:    conf,
		gateway: gateway,
		pending: pendingSvc,
		orders:  orderSvc,
		logs:    logs,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.POST("/api/checkout", s.handleCheckout)
	r.POST("/api/payment-log", s.handleClientLog)
	r.GET("/api/payment-log/:orderNumber", s.handleListLogs)
	r.POST("/payfast/notify", s.handleNotify)
	r.GET("/payment/return", s.handleReturn)
	r.GET("/payment/cancel", s.handleCancel)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	return r
}

func (s *Server) Run() error {
	return s.Router().Run(s.conf.HTTPAddr)
}
