package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"syscall"
)

var ErrAlreadyRunning = errors.New("servidor já está em execução")

// SavePID grava o PID do servidor. Um arquivo deixado por um processo que não
// existe mais é sobrescrito.
func SavePID(path string, pid int) error {
	if path == "" {
		return errors.New("caminho do arquivo PID não informado")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("falha ao criar diretório do PID: %w", err)
	}

	if existing, err := LoadPID(path); err == nil && existing != pid && IsRunning(existing) {
		return fmt.Errorf("%w (pid %d em %s)", ErrAlreadyRunning, existing, path)
	}

	return os.WriteFile(path, []byte(strconv.Itoa(pid)), 0o644)
}

func LoadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("falha ao ler arquivo PID: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("PID inválido em %s: %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

func RemovePID(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

// IsRunning testa se o processo existe enviando o sinal 0.
func IsRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

func TerminateProcess(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("não foi possível localizar o processo %d: %w", pid, err)
	}

	if runtime.GOOS == "windows" {
		return proc.Kill()
	}
	return proc.Signal(syscall.SIGTERM)
}
