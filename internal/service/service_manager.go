package service

import (
	"fmt"
	"os"

	"github.com/kardianos/service"
	log "github.com/sirupsen/logrus"
)

type ServiceManager struct {
	service service.Service
	daemon  *Daemon
}

type program struct {
	daemon *Daemon
}

func (p *program) Start(s service.Service) error {
	log.Info("starting blockprobe service")
	return p.daemon.Start()
}

func (p *program) Stop(s service.Service) error {
	log.Info("stopping blockprobe service")
	return p.daemon.Stop()
}

func NewServiceManager() (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	svcConfig := &service.Config{
		Name:        "com.blockprobe.daemon",
		DisplayName: "Blockprobe Device Monitor",
		Description: "Periodic block device attribute inspection",
		Executable:  execPath,
		Arguments:   []string{"daemon", "run"},
		Option: service.KeyValue{
			"RunAtLoad": true,
			"KeepAlive": true,
		},
	}

	daemon := NewDaemon()
	prg := &program{daemon: daemon}

	svc, err := service.New(prg, svcConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create service: %v", err)
	}

	return &ServiceManager{
		service: svc,
		daemon:  daemon,
	}, nil
}

func (sm *ServiceManager) Install() error {
	return sm.service.Install()
}

func (sm *ServiceManager) Uninstall() error {
	return sm.service.Uninstall()
}

func (sm *ServiceManager) Start() error {
	return sm.service.Start()
}

func (sm *ServiceManager) Stop() error {
	return sm.service.Stop()
}

func (sm *ServiceManager) RunForeground() error {
	return sm.service.Run()
}
